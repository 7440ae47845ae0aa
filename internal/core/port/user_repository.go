package port

import (
	"context"
	"time"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
)

// UserRepository manages user record storage.
type UserRepository interface {
	Create(ctx context.Context, user domain.UserRecord) error
	GetByID(ctx context.Context, id string) (*domain.UserRecord, error)
	ListIDs(ctx context.Context) ([]string, error)
	ListByRole(ctx context.Context, role string) ([]domain.UserRecord, error)
	Update(ctx context.Context, user domain.UserRecord) error
	// SetPromotionState records workflow progress on the staff record so an
	// interrupted promotion can resume with the credential it already owns.
	SetPromotionState(ctx context.Context, id string, state domain.PromotionState, adminUserID *string) error
	// MarkPromoted stamps the staff record as promoted in a single write.
	MarkPromoted(ctx context.Context, id, adminUserID, promotedBy string, promotedAt time.Time) error
	AppendNote(ctx context.Context, userID, note string) error
}
