package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/port"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository"
)

// SeedSystemRoles provisions the system roles at bootstrap. Existing roles
// are left untouched; seeding is idempotent and never deletes.
func SeedSystemRoles(ctx context.Context, roles port.RoleRepository, log *zap.Logger) error {
	seeds := []domain.Role{
		{
			Name:        domain.RoleSuperAdmin,
			Permissions: []domain.PermissionID{domain.PermissionWildcard},
			IsSystem:    true,
		},
		{
			Name: domain.RoleAdmin,
			Permissions: []domain.PermissionID{
				domain.PermViewStaff,
				domain.PermManageStaff,
				domain.PermViewClients,
				domain.PermManageClients,
				domain.PermViewCentres,
				domain.PermViewReports,
				domain.PermManageRoles,
				domain.PermPromoteStaff,
			},
			IsSystem: true,
		},
		{
			Name: domain.RoleStaff,
			Permissions: []domain.PermissionID{
				domain.PermViewClients,
				domain.PermViewOwnAppointments,
				domain.PermViewCentres,
			},
			IsSystem: true,
		},
		{
			Name: domain.RoleClient,
			Permissions: []domain.PermissionID{
				domain.PermViewOwnAppointments,
			},
			IsSystem:  true,
			IsDefault: true,
		},
	}

	for _, seed := range seeds {
		existing, err := roles.GetByName(ctx, seed.Name)
		if err == nil && existing != nil {
			continue
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("lookup role %q: %w", seed.Name, err)
		}

		now := time.Now().UTC()
		seed.ID = uuid.NewString()
		seed.CreatedAt = now
		seed.UpdatedAt = now
		if err := roles.Create(ctx, seed); err != nil {
			return fmt.Errorf("seed role %q: %w", seed.Name, err)
		}
		log.Info("seeded system role", zap.String("role", seed.Name))
	}

	return nil
}
