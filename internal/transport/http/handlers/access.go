package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/usecase"
)

// AccessHandler exposes permission resolution endpoints.
type AccessHandler struct {
	permissions *usecase.PermissionService
}

// NewAccessHandler constructs an AccessHandler.
func NewAccessHandler(permissions *usecase.PermissionService) *AccessHandler {
	return &AccessHandler{permissions: permissions}
}

// RegisterRoutes wires the access endpoints onto the given group.
func (h *AccessHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/permissions", h.Catalog)
	r.GET("/users/:id/permissions", h.EffectivePermissions)
	r.GET("/users/:id/permissions/check", h.CheckPermission)
}

// Catalog lists the closed permission catalog.
func (h *AccessHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, PermissionCatalogResponse{
		Permissions: domain.CatalogPermissions(),
	})
}

// EffectivePermissions resolves and returns a user's effective permission set.
func (h *AccessHandler) EffectivePermissions(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user id is required"))
		return
	}

	user, err := h.permissions.GetUser(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to resolve permissions")
		return
	}

	set, err := h.permissions.ResolvePermissions(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, usecase.ErrRoleNotFound) {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to resolve permissions")
		return
	}

	c.JSON(http.StatusOK, EffectivePermissionsResponse{
		UserID:      userID,
		Role:        user.Role,
		Wildcard:    set.All(),
		Permissions: permissionStrings(set.Slice()),
	})
}

// CheckPermission evaluates whether the user holds a single permission.
func (h *AccessHandler) CheckPermission(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	permission := strings.TrimSpace(c.Query("permission"))
	if userID == "" || permission == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user id and permission are required"))
		return
	}

	allowed, err := h.permissions.UserHasPermission(c.Request.Context(), userID, domain.PermissionID(permission))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to check permission")
		return
	}

	c.JSON(http.StatusOK, PermissionCheckResponse{
		UserID:     userID,
		Permission: permission,
		Allowed:    allowed,
	})
}
