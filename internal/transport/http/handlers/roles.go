package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/transport/http/middleware"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/usecase"
)

// RoleHandler exposes role administration endpoints.
type RoleHandler struct {
	roles *usecase.RoleService
}

// NewRoleHandler constructs a RoleHandler.
func NewRoleHandler(roles *usecase.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// RegisterRoutes wires the role endpoints onto the given group.
func (h *RoleHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.ListRoles)
	r.GET("/:id", h.GetRole)
	r.POST("", h.CreateRole)
	r.PATCH("/:id", h.UpdateRole)
	r.DELETE("/:id", h.DeleteRole)
	r.POST("/:id/default", h.SetDefaultRole)
}

// ListRoles returns every stored role.
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roles.ListRoles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list roles"))
		return
	}

	payload := make([]RolePayload, 0, len(roles))
	for _, role := range roles {
		payload = append(payload, toRolePayload(role))
	}

	c.JSON(http.StatusOK, payload)
}

// GetRole returns a single role by id.
func (h *RoleHandler) GetRole(c *gin.Context) {
	roleID := strings.TrimSpace(c.Param("id"))
	if roleID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role id is required"))
		return
	}

	role, err := h.roles.GetRole(c.Request.Context(), roleID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
		}, http.StatusInternalServerError, "failed to load role")
		return
	}

	c.JSON(http.StatusOK, toRolePayload(*role))
}

// CreateRole creates a new role.
func (h *RoleHandler) CreateRole(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req RoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	input := usecase.CreateRoleInput{
		Name:        strings.TrimSpace(req.Name),
		Permissions: toPermissionIDs(req.Permissions),
		IsDefault:   req.IsDefault,
	}
	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		if trimmed != "" {
			input.Description = &trimmed
		}
	}

	role, err := h.roles.CreateRole(c.Request.Context(), actorID, input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrRoleExists, Status: http.StatusConflict, Message: "role already exists"},
			{Err: usecase.ErrUnknownPermission, Status: http.StatusBadRequest, Message: "unknown permission identifier"},
		}, http.StatusInternalServerError, "failed to create role")
		return
	}

	c.JSON(http.StatusCreated, toRolePayload(*role))
}

// UpdateRole applies a partial update to a role.
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	roleID := strings.TrimSpace(c.Param("id"))
	if roleID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role id is required"))
		return
	}

	var req RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	input := usecase.UpdateRoleInput{
		ID:          roleID,
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	}
	if req.Permissions != nil {
		ids := toPermissionIDs(*req.Permissions)
		input.Permissions = &ids
	}

	role, err := h.roles.UpdateRole(c.Request.Context(), actorID, input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
			{Err: usecase.ErrSystemRole, Status: http.StatusConflict, Message: "system role cannot be modified"},
			{Err: usecase.ErrRoleExists, Status: http.StatusConflict, Message: "role name already in use"},
			{Err: usecase.ErrUnknownPermission, Status: http.StatusBadRequest, Message: "unknown permission identifier"},
		}, http.StatusInternalServerError, "failed to update role")
		return
	}

	c.JSON(http.StatusOK, toRolePayload(*role))
}

// DeleteRole removes a role that is not a system role and not in use.
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	roleID := strings.TrimSpace(c.Param("id"))
	if roleID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role id is required"))
		return
	}

	if err := h.roles.DeleteRole(c.Request.Context(), actorID, roleID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
			{Err: usecase.ErrSystemRole, Status: http.StatusConflict, Message: "system role cannot be deleted"},
			{Err: usecase.ErrRoleInUse, Status: http.StatusConflict, Message: "role is still assigned to users"},
		}, http.StatusInternalServerError, "failed to delete role")
		return
	}

	c.Status(http.StatusNoContent)
}

// SetDefaultRole marks a role as the default for new users.
func (h *RoleHandler) SetDefaultRole(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	roleID := strings.TrimSpace(c.Param("id"))
	if roleID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role id is required"))
		return
	}

	if err := h.roles.SetDefaultRole(c.Request.Context(), actorID, roleID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
		}, http.StatusInternalServerError, "failed to set default role")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "default role updated"})
}
