package client

import (
	"context"
	"sync"
	"time"
)

// Lister fetches one page of placements.
type Lister interface {
	ListPlacements(ctx context.Context, q Query) (*Page, error)
}

// State is what a list view currently displays.
type State struct {
	Query   Query
	Page    *Page
	Err     error
	Loading bool
}

// ListViewOptions configures a ListView.
type ListViewOptions struct {
	Debounce time.Duration
	PerPage  int
	OnUpdate func(State)
}

// ListView keeps the placement list state for an interactive screen. Search
// and package-range input are debounced. Every fetch carries a sequence
// number and a response older than the one already shown is dropped.
type ListView struct {
	lister   Lister
	debounce *Debouncer
	onUpdate func(State)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	query   Query
	seq     uint64
	applied uint64
	state   State
}

// NewListView builds a list view on top of lister.
func NewListView(lister Lister, opt ListViewOptions) *ListView {
	ctx, cancel := context.WithCancel(context.Background())
	q := Query{Page: 1, PerPage: opt.PerPage}
	return &ListView{
		lister:   lister,
		debounce: NewDebouncer(opt.Debounce),
		onUpdate: opt.OnUpdate,
		ctx:      ctx,
		cancel:   cancel,
		query:    q,
		state:    State{Query: q},
	}
}

// SetSearch updates the free-text search after the quiet period.
func (v *ListView) SetSearch(term string) {
	v.mu.Lock()
	v.query.Search = term
	v.query.Page = 1
	v.mu.Unlock()
	v.debounce.Trigger(v.fetch)
}

// SetPackageRange updates the package bounds in lakhs after the quiet period.
// A nil bound removes it.
func (v *ListView) SetPackageRange(lower, upper *float64) {
	v.mu.Lock()
	v.query.MinPackage = lower
	v.query.MaxPackage = upper
	v.query.Page = 1
	v.mu.Unlock()
	v.debounce.Trigger(v.fetch)
}

// SetFilter applies the dropdown filters and fetches immediately.
func (v *ListView) SetFilter(department, company string, year int, status string) {
	v.mu.Lock()
	v.query.Department = department
	v.query.Company = company
	v.query.Year = year
	v.query.Status = status
	v.query.Page = 1
	v.mu.Unlock()
	v.fetch()
}

// SetSort changes the ordering and fetches immediately.
func (v *ListView) SetSort(field, direction string) {
	v.mu.Lock()
	v.query.SortField = field
	v.query.SortDirection = direction
	v.query.Page = 1
	v.mu.Unlock()
	v.fetch()
}

// GoToPage moves to page and fetches immediately.
func (v *ListView) GoToPage(page int) {
	if page < 1 {
		page = 1
	}
	v.mu.Lock()
	v.query.Page = page
	v.mu.Unlock()
	v.fetch()
}

// Refresh refetches the current query, dropping any pending debounced call.
func (v *ListView) Refresh() {
	v.debounce.Stop()
	v.fetch()
}

// Current returns the displayed state.
func (v *ListView) Current() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Close cancels pending and in-flight fetches.
func (v *ListView) Close() {
	v.debounce.Stop()
	v.cancel()
}

func (v *ListView) fetch() {
	if v.ctx.Err() != nil {
		return
	}
	v.mu.Lock()
	v.seq++
	seq := v.seq
	q := v.query
	v.state.Loading = true
	v.mu.Unlock()

	go func() {
		page, err := v.lister.ListPlacements(v.ctx, q)
		if v.ctx.Err() != nil {
			return
		}
		v.apply(seq, q, page, err)
	}()
}

func (v *ListView) apply(seq uint64, q Query, page *Page, err error) {
	v.mu.Lock()
	if seq <= v.applied {
		v.mu.Unlock()
		return
	}
	v.applied = seq
	state := State{Query: q, Loading: seq < v.seq, Err: err, Page: page}
	if err != nil {
		// keep the last good rows on screen
		state.Page = v.state.Page
	}
	v.state = state
	cb := v.onUpdate
	v.mu.Unlock()

	if cb != nil {
		cb(state)
	}
}
