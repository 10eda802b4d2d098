package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the placement REST API. The session cookie set by Login is
// kept in the client's cookie jar.
type Client struct {
	baseURL *url.URL
	prefix  string
	hc      *http.Client
}

// Options configures a Client.
type Options struct {
	Addr       string
	APIPrefix  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// APIError is the error object returned inside the response envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Pagination mirrors the envelope pagination block.
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"perPage"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
}

// Placement is one row of the placement list.
type Placement struct {
	ID             int64   `json:"id"`
	StudentID      int64   `json:"student_id"`
	CompanyID      int64   `json:"company_id"`
	Name           string  `json:"name"`
	Roll           string  `json:"roll"`
	Department     string  `json:"department"`
	Company        string  `json:"company"`
	Package        int64   `json:"package"`
	PackageLakhs   float64 `json:"packageLakhs"`
	PackageDisplay string  `json:"packageDisplay"`
	Year           int     `json:"year"`
	Status         string  `json:"status"`
}

// Page is one page of placements plus its position and empty-state flags.
type Page struct {
	Data       []Placement
	Pagination Pagination
	Empty      bool
	Message    string
}

// FilterOptions lists the values offered by the filter controls.
type FilterOptions struct {
	Departments []string `json:"departments"`
	Companies   []string `json:"companies"`
	Years       []int    `json:"years"`
}

// Query is the placement list request. Zero values leave a parameter unset;
// package bounds are in lakhs.
type Query struct {
	Search        string
	Department    string
	Company       string
	Year          int
	Status        string
	MinPackage    *float64
	MaxPackage    *float64
	SortField     string
	SortDirection string
	Page          int
	PerPage       int
}

func (q Query) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("search", q.Search)
	set("department", q.Department)
	set("company", q.Company)
	set("status", q.Status)
	set("sortField", q.SortField)
	set("sortDirection", q.SortDirection)
	if q.Year > 0 {
		v.Set("year", strconv.Itoa(q.Year))
	}
	if q.MinPackage != nil {
		v.Set("minPackage", strconv.FormatFloat(*q.MinPackage, 'f', -1, 64))
	}
	if q.MaxPackage != nil {
		v.Set("maxPackage", strconv.FormatFloat(*q.MaxPackage, 'f', -1, 64))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("perPage", strconv.Itoa(q.PerPage))
	}
	return v
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *APIError              `json:"error"`
	Pagination *Pagination            `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

// New builds a client for the API at opt.Addr.
func New(opt Options) (*Client, error) {
	if opt.Addr == "" {
		return nil, errors.New("addr is required")
	}
	u, err := url.Parse(opt.Addr)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid addr")
	}

	prefix := opt.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}

	hc := opt.HTTPClient
	if hc == nil {
		jar, _ := cookiejar.New(nil)
		timeout := opt.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Jar: jar, Timeout: timeout}
	}
	return &Client{baseURL: u, prefix: "/" + strings.Trim(prefix, "/"), hc: hc}, nil
}

// Login starts an admin session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	req := map[string]string{"username": username, "password": password}
	_, err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, nil)
	return err
}

// Logout ends the admin session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	return err
}

// ListPlacements fetches one page of placements.
func (c *Client) ListPlacements(ctx context.Context, q Query) (*Page, error) {
	var items []Placement
	env, err := c.do(ctx, http.MethodGet, "/placements", q.values(), nil, &items)
	if err != nil {
		return nil, err
	}
	page := &Page{Data: items}
	if page.Data == nil {
		page.Data = []Placement{}
	}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	if empty, ok := env.Meta["empty"].(bool); ok {
		page.Empty = empty
	}
	if message, ok := env.Meta["message"].(string); ok {
		page.Message = message
	}
	return page, nil
}

// FilterOptions fetches the distinct filter values.
func (c *Client) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	var options FilterOptions
	if _, err := c.do(ctx, http.MethodGet, "/placements/filters", nil, nil, &options); err != nil {
		return nil, err
	}
	return &options, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*envelope, error) {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		buf = bytes.NewReader(b)
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: c.prefix + path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	env := &envelope{}
	if resp.StatusCode == http.StatusNoContent {
		return env, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if env.Error != nil {
		return nil, env.Error
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return env, nil
}
