package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/port"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/telemetry"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/transport/http/middleware"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/usecase"
)

// PromotionHandler exposes the staff promotion endpoint.
type PromotionHandler struct {
	promotions *usecase.PromotionService
	outcomes   *telemetry.Provider
}

// NewPromotionHandler constructs a PromotionHandler.
func NewPromotionHandler(promotions *usecase.PromotionService, outcomes *telemetry.Provider) *PromotionHandler {
	return &PromotionHandler{promotions: promotions, outcomes: outcomes}
}

// RegisterRoutes wires the promotion endpoint onto the given group.
func (h *PromotionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/staff/:id/promote", h.Promote)
}

// Promote provisions an admin identity for a staff member. The flow is
// resumable: when a credential was created but provisioning failed later,
// retrying picks up the existing credential instead of creating another.
func (h *PromotionHandler) Promote(c *gin.Context) {
	staffID := strings.TrimSpace(c.Param("id"))
	if staffID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "staff id is required"))
		return
	}

	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	adminUserID, err := h.promotions.Promote(c.Request.Context(), staffID, actorID)
	if err != nil {
		h.outcomes.RecordPromotionOutcome("failure")
		var promoErr *usecase.PromotionError
		if errors.As(err, &promoErr) && promoErr.CredentialID != "" {
			// The credential exists but provisioning did not finish; surface
			// the credential id so operators can reconcile or retry.
			resp := NewErrorResponse(c, "promotion incomplete, retry to resume")
			resp.CredentialID = promoErr.CredentialID
			c.JSON(http.StatusInternalServerError, resp)
			return
		}

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "staff member not found"},
			{Err: usecase.ErrAlreadyPromoted, Status: http.StatusConflict, Message: "staff member already promoted"},
			{Err: usecase.ErrStaffInactive, Status: http.StatusConflict, Message: "staff record is inactive"},
			{Err: port.ErrEmailExists, Status: http.StatusConflict, Message: "email already registered with the identity provider"},
			{Err: port.ErrInvalidEmail, Status: http.StatusBadRequest, Message: "staff email address is invalid"},
			{Err: port.ErrWeakSecret, Status: http.StatusUnprocessableEntity, Message: "generated credential rejected as too weak"},
		}, http.StatusBadGateway, "identity provider rejected the promotion")
		return
	}

	h.outcomes.RecordPromotionOutcome("success")
	c.JSON(http.StatusCreated, PromotionResponse{
		StaffID:     staffID,
		AdminUserID: adminUserID,
	})
}
