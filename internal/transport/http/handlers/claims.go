package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/telemetry"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/usecase"
)

// ClaimsHandler exposes claims synchronization endpoints.
type ClaimsHandler struct {
	claims   *usecase.ClaimsService
	outcomes *telemetry.Provider
}

// NewClaimsHandler constructs a ClaimsHandler.
func NewClaimsHandler(claims *usecase.ClaimsService, outcomes *telemetry.Provider) *ClaimsHandler {
	return &ClaimsHandler{claims: claims, outcomes: outcomes}
}

// RegisterRoutes wires the claims endpoints onto the given group.
func (h *ClaimsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/users/:id/claims/sync", h.SyncUser)
	r.GET("/users/:id/claims", h.Snapshot)
	r.POST("/claims/sync-all", h.SyncAll)
}

// SyncUser recomputes a user's claims, pushes them to the identity provider
// and refreshes the local mirror.
func (h *ClaimsHandler) SyncUser(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user id is required"))
		return
	}

	if err := h.claims.SyncUser(c.Request.Context(), userID); err != nil {
		h.outcomes.RecordSyncOutcomes("failure", 1)
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrSyncFailed, Status: http.StatusBadGateway, Message: "identity provider rejected the claims push"},
		}, http.StatusInternalServerError, "failed to sync claims")
		return
	}

	h.outcomes.RecordSyncOutcomes("success", 1)
	c.JSON(http.StatusOK, MessageResponse{Message: "claims synchronized"})
}

// Snapshot returns the locally mirrored copy of the last pushed claims.
func (h *ClaimsHandler) Snapshot(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user id is required"))
		return
	}

	snapshot, err := h.claims.Snapshot(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "no claims snapshot for user"},
		}, http.StatusInternalServerError, "failed to load claims snapshot")
		return
	}

	c.JSON(http.StatusOK, ClaimsSnapshotPayload{
		UserID:          snapshot.UserID,
		Role:            snapshot.Role,
		Permissions:     permissionStrings(snapshot.Permissions),
		CentreIDs:       snapshot.CentreIDs,
		PrimaryCentreID: snapshot.PrimaryCentreID,
		LastUpdated:     snapshot.LastUpdated,
	})
}

// SyncAll resynchronizes claims for every user record and reports the tally.
// Individual user failures are counted, not fatal.
func (h *ClaimsHandler) SyncAll(c *gin.Context) {
	report, err := h.claims.SyncAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to enumerate users"))
		return
	}

	h.outcomes.RecordSyncOutcomes("success", report.Success)
	h.outcomes.RecordSyncOutcomes("failure", report.Failed)
	c.JSON(http.StatusOK, SyncReportResponse{
		Total:   report.Success + report.Failed,
		Success: report.Success,
		Failed:  report.Failed,
	})
}
