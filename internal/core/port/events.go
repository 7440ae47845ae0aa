package port

import (
	"context"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishClaimsSynced(ctx context.Context, event domain.ClaimsSyncedEvent) error
	PublishStaffPromoted(ctx context.Context, event domain.StaffPromotedEvent) error
	PublishRoleChanged(ctx context.Context, event domain.RoleChangedEvent) error
}
