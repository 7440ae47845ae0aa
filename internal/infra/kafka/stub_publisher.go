package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishClaimsSynced logs iam.claims.synced events.
func (p *StubPublisher) PublishClaimsSynced(_ context.Context, event domain.ClaimsSyncedEvent) error {
	payload := map[string]any{
		"user_id":          event.UserID,
		"role":             event.Role,
		"permission_count": event.PermissionCount,
		"wildcard":         event.Wildcard,
		"synced_at":        event.SyncedAt,
	}
	p.logEvent("iam.claims.synced", event.UserID, event.SyncedAt, payload)
	return nil
}

// PublishStaffPromoted logs iam.staff.promoted events.
func (p *StubPublisher) PublishStaffPromoted(_ context.Context, event domain.StaffPromotedEvent) error {
	payload := map[string]any{
		"staff_id":      event.StaffID,
		"admin_user_id": event.AdminUserID,
		"email":         event.Email,
		"promoted_by":   event.PromotedBy,
		"promoted_at":   event.PromotedAt,
	}
	p.logEvent("iam.staff.promoted", event.StaffID, event.PromotedAt, payload)
	return nil
}

// PublishRoleChanged logs iam.role.changed events.
func (p *StubPublisher) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	payload := map[string]any{
		"role_id":    event.RoleID,
		"name":       event.Name,
		"action":     event.Action,
		"changed_by": event.ChangedBy,
		"changed_at": event.ChangedAt,
	}
	p.logEvent("iam.role.changed", event.ChangedBy, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
