package port

import (
	"context"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
)

// RoleRepository handles role persistence.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Update(ctx context.Context, role domain.Role) error
	Delete(ctx context.Context, id string) error
	// ClearDefault removes the default flag from whichever role holds it.
	// Callers pair it with an Update that sets the new default.
	ClearDefault(ctx context.Context) error
}
