package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error        string `json:"error"`
	CredentialID string `json:"credential_id,omitempty"`
	TraceID      string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports downstream dependency status.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// PermissionCatalogResponse lists the closed permission catalog.
type PermissionCatalogResponse struct {
	Permissions []domain.PermissionID `json:"permissions"`
}

// EffectivePermissionsResponse carries a user's resolved permission set.
type EffectivePermissionsResponse struct {
	UserID      string   `json:"user_id"`
	Role        string   `json:"role"`
	Wildcard    bool     `json:"wildcard"`
	Permissions []string `json:"permissions"`
}

// PermissionCheckResponse reports a single permission check.
type PermissionCheckResponse struct {
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
}

// ClaimsSnapshotPayload is the mirrored claims document for a user.
type ClaimsSnapshotPayload struct {
	UserID          string    `json:"user_id"`
	Role            string    `json:"role"`
	Permissions     []string  `json:"permissions"`
	CentreIDs       []string  `json:"centre_ids"`
	PrimaryCentreID *string   `json:"primary_centre_id,omitempty"`
	LastUpdated     time.Time `json:"last_updated"`
}

// SyncReportResponse summarizes a batch claims synchronization run.
type SyncReportResponse struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// PromotionResponse is returned after a staff member is promoted.
type PromotionResponse struct {
	StaffID     string `json:"staff_id"`
	AdminUserID string `json:"admin_user_id"`
}

// RolePayload describes a role returned by the API.
type RolePayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	IsSystem    bool      `json:"is_system"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleCreateRequest is the payload for creating a role.
type RoleCreateRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	Permissions []string `json:"permissions"`
	IsDefault   bool     `json:"is_default"`
}

// RoleUpdateRequest is the payload for updating a role. Omitted fields are
// left unchanged.
type RoleUpdateRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
	IsDefault   *bool     `json:"is_default"`
}

func toRolePayload(role domain.Role) RolePayload {
	return RolePayload{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: permissionStrings(role.Permissions),
		IsSystem:    role.IsSystem,
		IsDefault:   role.IsDefault,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

func permissionStrings(ids []domain.PermissionID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func toPermissionIDs(names []string) []domain.PermissionID {
	out := make([]domain.PermissionID, 0, len(names))
	for _, name := range names {
		out = append(out, domain.PermissionID(name))
	}
	return out
}
