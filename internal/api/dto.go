package api

import (
	"github.com/starford/mailcraft/internal/canvas"
	"github.com/starford/mailcraft/internal/emailservice"
	"github.com/starford/mailcraft/internal/models"
)

// SetTitleRequest is the request body for renaming the document.
type SetTitleRequest struct {
	Title string `json:"title" example:"Promoção de Verão"`
}

// PreviewModeResponse reports the preview width after a toggle.
type PreviewModeResponse struct {
	PreviewMobile bool `json:"previewMobile"`
}

// AddComponentRequest is the request body for adding a component.
type AddComponentRequest struct {
	Type  string       `json:"type" example:"button" validate:"required"`
	Props models.Props `json:"props,omitempty"`
}

// UpdateComponentRequest is the request body for merging component props.
type UpdateComponentRequest struct {
	Props models.Props `json:"props" validate:"required"`
}

// SelectRequest selects a component; an empty id deselects.
type SelectRequest struct {
	ID string `json:"id"`
}

// ReorderRequest moves a component onto another's position.
type ReorderRequest struct {
	MovedID  string `json:"movedId" validate:"required"`
	TargetID string `json:"targetId" validate:"required"`
}

// SendTestRequest lists the recipients of a test send.
type SendTestRequest struct {
	To []string `json:"to" example:"ana@example.com" validate:"required"`
}

// DragStartRequest begins a canvas gesture.
type DragStartRequest struct {
	Source canvas.Source `json:"source" validate:"required"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
}

// DragMoveRequest reports pointer movement.
type DragMoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DragTargetRequest names the drop target for over and end.
type DragTargetRequest struct {
	TargetID string `json:"targetId"`
}

// EmailListResponse wraps paginated saved-email listings.
type EmailListResponse struct {
	Emails []emailservice.EmailListItem `json:"emails" validate:"required"`
	Total  int                          `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps saved-email search results.
type SearchResponse struct {
	Results []emailservice.SearchHit `json:"results" validate:"required"`
}

// ProposalResponse is the proposal session with composer status.
type ProposalResponse struct {
	models.ProposalSession
	Generating bool   `json:"generating"`
	WebhookURL string `json:"webhookUrl"`
}

// UpdateProposalRequest changes proposal details. Absent fields are kept.
type UpdateProposalRequest struct {
	Title   *string `json:"title,omitempty"`
	Company *string `json:"company,omitempty"`
}

// SendMessageRequest is a chat message from the user.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// WebhookRequest sets or clears the proposal webhook.
type WebhookRequest struct {
	URL string `json:"url" example:"https://hooks.example.com/proposal"`
}

// AdminModeRequest turns the permission bypass on or off.
type AdminModeRequest struct {
	Enabled bool `json:"enabled"`
}

// AccessLevelRequest sets the access level of one area.
type AccessLevelRequest struct {
	Level models.AccessLevel `json:"level" example:"all" validate:"required"`
}

// RoleRequest creates a role.
type RoleRequest struct {
	Name        string             `json:"name" example:"Support" validate:"required"`
	Description string             `json:"description"`
	Permissions models.Permissions `json:"permissions" validate:"required"`
}

// RolePatchRequest changes a role. Absent fields are kept.
type RolePatchRequest struct {
	Name        *string             `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	Permissions *models.Permissions `json:"permissions,omitempty"`
}

// ActiveRoleRequest names the role to mark active.
type ActiveRoleRequest struct {
	RoleID string `json:"roleId" validate:"required"`
}

// UserRequest creates a user.
type UserRequest struct {
	Name   string `json:"name" example:"Ana" validate:"required"`
	Email  string `json:"email" example:"ana@example.com" validate:"required"`
	RoleID string `json:"roleId" example:"marketing" validate:"required"`
}

// UserPatchRequest changes a user. Absent fields are kept.
type UserPatchRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	RoleID *string `json:"roleId,omitempty"`
}

// PermissionResponse answers a permission check.
type PermissionResponse struct {
	UserID  string      `json:"userId"`
	Area    models.Area `json:"area"`
	Allowed bool        `json:"allowed"`
}
