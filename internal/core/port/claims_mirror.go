package port

import (
	"context"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
)

// ClaimsMirror persists the last claims payload pushed per user. Written
// only by the claims synchronizer, read only for diagnostics.
type ClaimsMirror interface {
	Put(ctx context.Context, snapshot domain.ClaimsSnapshot) error
	Get(ctx context.Context, userID string) (*domain.ClaimsSnapshot, error)
}
