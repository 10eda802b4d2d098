package dto

import "strings"

// Action names accepted by the legacy action endpoint. Aliases map to the
// same operation.
const (
	ActionLogin            = "login"
	ActionAdminLogin       = "admin_login"
	ActionLogout           = "logout"
	ActionList             = "list"
	ActionGetAdminData     = "get_admin_data"
	ActionGetPlacements    = "get_placements"
	ActionGetFilterOptions = "get_filter_options"
	ActionSave             = "save"
	ActionSaveAdminData    = "save_admin_data"
	ActionDelete           = "delete"
	ActionDeleteAdminData  = "delete_admin_data"
	ActionDashboardStats   = "dashboard_stats"
	ActionGetDashboard     = "get_dashboard_stats"
	ActionAnalytics        = "analytics"
	ActionGetAnalytics     = "get_analytics"
)

// Record kinds addressed by list, save and delete actions.
const (
	KindPlacement = "placement"
	KindCompany   = "company"
	KindStudent   = "student"
	KindUser      = "user"
)

// CanonicalAction folds aliases onto one name. Unknown names come back unchanged
// with ok=false.
func CanonicalAction(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ActionLogin, ActionAdminLogin:
		return ActionLogin, true
	case ActionLogout:
		return ActionLogout, true
	case ActionList, ActionGetAdminData:
		return ActionList, true
	case ActionGetPlacements:
		return ActionGetPlacements, true
	case ActionGetFilterOptions:
		return ActionGetFilterOptions, true
	case ActionSave, ActionSaveAdminData:
		return ActionSave, true
	case ActionDelete, ActionDeleteAdminData:
		return ActionDelete, true
	case ActionDashboardStats, ActionGetDashboard:
		return ActionDashboardStats, true
	case ActionAnalytics, ActionGetAnalytics:
		return ActionAnalytics, true
	default:
		return name, false
	}
}

// CanonicalKind accepts singular or plural record kinds ("companies" -> "company").
func CanonicalKind(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "placement", "placements":
		return KindPlacement, true
	case "company", "companies":
		return KindCompany, true
	case "student", "students":
		return KindStudent, true
	case "user", "users":
		return KindUser, true
	default:
		return "", false
	}
}

// ActionEnvelope carries only the discriminator.
type ActionEnvelope struct {
	Action string `json:"action" form:"action" validate:"required"`
}

// LoginAction is the login action body.
type LoginAction struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// TypedAction addresses a record kind.
type TypedAction struct {
	Type string `json:"type" form:"type"`
}

// ListAction lists one record kind; placement lists also carry a filter.
type ListAction struct {
	TypedAction
	PlacementListQuery
}

// DeleteAction deletes one record by id.
type DeleteAction struct {
	Type string     `json:"type" form:"type"`
	ID   FlexString `json:"id" form:"id"`
}

// LegacyResponse is the action endpoint reply.
type LegacyResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Total      *int        `json:"total,omitempty"`
	Page       *int        `json:"page,omitempty"`
	PerPage    *int        `json:"perPage,omitempty"`
	TotalPages *int        `json:"totalPages,omitempty"`
	HasPrev    *bool       `json:"hasPrev,omitempty"`
	HasNext    *bool       `json:"hasNext,omitempty"`
	Empty      bool        `json:"empty,omitempty"`
	Username   string      `json:"username,omitempty"`
}

// LegacyPage wraps a placement page in the legacy reply shape.
func LegacyPage(page PlacementPage) LegacyResponse {
	p := page.Pagination
	return LegacyResponse{
		Success:    true,
		Message:    page.Message,
		Data:       page.Data,
		Total:      &p.Total,
		Page:       &p.Page,
		PerPage:    &p.PerPage,
		TotalPages: &p.TotalPages,
		HasPrev:    &p.HasPrev,
		HasNext:    &p.HasNext,
		Empty:      page.Empty,
	}
}
