package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/port"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository"
)

var (
	// ErrRoleExists indicates a role with the provided name already exists.
	ErrRoleExists = errors.New("role already exists")
	// ErrSystemRole indicates the operation is forbidden for system roles.
	ErrSystemRole = errors.New("system role cannot be modified")
	// ErrRoleInUse indicates users still reference the role.
	ErrRoleInUse = errors.New("role is still assigned to users")
	// ErrUnknownPermission indicates an identifier outside the catalog.
	ErrUnknownPermission = errors.New("unknown permission identifier")
)

// CreateRoleInput captures the payload for creating a role.
type CreateRoleInput struct {
	Name        string
	Description *string
	Permissions []domain.PermissionID
	IsDefault   bool
}

// UpdateRoleInput captures the payload for updating a role. Nil fields are
// left unchanged.
type UpdateRoleInput struct {
	ID          string
	Name        *string
	Description *string
	Permissions *[]domain.PermissionID
	IsDefault   *bool
}

// RoleService manages the role store: creation, mutation and the lifecycle
// guards around system and default roles. Role mutations re-sync claims for
// affected users so tokens converge on the next refresh.
type RoleService struct {
	roles       port.RoleRepository
	users       port.UserRepository
	permissions *PermissionService
	events      port.EventPublisher
	claims      *ClaimsService
	logger      *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(roles port.RoleRepository, users port.UserRepository, permissions *PermissionService, events port.EventPublisher, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{roles: roles, users: users, permissions: permissions, events: events, logger: logger}
}

// WithClaimsService enables claims re-synchronization after role mutations.
func (s *RoleService) WithClaimsService(claims *ClaimsService) *RoleService {
	s.claims = claims
	return s
}

// ListRoles returns all stored roles.
func (s *RoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

// GetRole retrieves a role by id.
func (s *RoleService) GetRole(ctx context.Context, roleID string) (*domain.Role, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, fmt.Errorf("role id is required")
	}
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, roleID)
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// CreateRole provisions a new role, ensuring the actor may manage roles and
// every permission identifier belongs to the catalog.
func (s *RoleService) CreateRole(ctx context.Context, actorID string, input CreateRoleInput) (*domain.Role, error) {
	if err := s.requireManageRoles(ctx, actorID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}

	permissions, err := normalizePermissions(input.Permissions)
	if err != nil {
		return nil, err
	}

	if existing, err := s.roles.GetByName(ctx, name); err == nil && existing != nil {
		return nil, ErrRoleExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup role by name: %w", err)
	}

	now := time.Now().UTC()
	role := domain.Role{
		ID:          uuid.NewString(),
		Name:        name,
		Permissions: permissions,
		IsDefault:   input.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed != "" {
			role.Description = &trimmed
		}
	}

	if input.IsDefault {
		if err := s.roles.ClearDefault(ctx); err != nil {
			return nil, fmt.Errorf("clear default role: %w", err)
		}
	}

	if err := s.roles.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.publishRoleChanged(ctx, role, "created", actorID)

	return &role, nil
}

// UpdateRole mutates an existing role. System roles cannot be renamed;
// permission changes trigger a best-effort claims re-sync for every user
// holding the role.
func (s *RoleService) UpdateRole(ctx context.Context, actorID string, input UpdateRoleInput) (*domain.Role, error) {
	if err := s.requireManageRoles(ctx, actorID); err != nil {
		return nil, err
	}

	role, err := s.GetRole(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	permissionsChanged := false

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("role name is required")
		}
		if trimmed != role.Name {
			if role.IsSystem {
				return nil, ErrSystemRole
			}
			if existing, err := s.roles.GetByName(ctx, trimmed); err == nil && existing != nil && existing.ID != role.ID {
				return nil, ErrRoleExists
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("lookup role by name: %w", err)
			}
			role.Name = trimmed
		}
	}

	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed == "" {
			role.Description = nil
		} else {
			role.Description = &trimmed
		}
	}

	if input.Permissions != nil {
		permissions, err := normalizePermissions(*input.Permissions)
		if err != nil {
			return nil, err
		}
		role.Permissions = permissions
		permissionsChanged = true
	}

	if input.IsDefault != nil && *input.IsDefault != role.IsDefault {
		if *input.IsDefault {
			if err := s.roles.ClearDefault(ctx); err != nil {
				return nil, fmt.Errorf("clear default role: %w", err)
			}
		}
		role.IsDefault = *input.IsDefault
	}

	role.UpdatedAt = time.Now().UTC()
	if err := s.roles.Update(ctx, *role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.publishRoleChanged(ctx, *role, "updated", actorID)

	if permissionsChanged {
		s.resyncRoleMembers(ctx, role.Name)
	}

	return role, nil
}

// DeleteRole removes a role. System roles and roles still assigned to users
// are protected.
func (s *RoleService) DeleteRole(ctx context.Context, actorID, roleID string) error {
	if err := s.requireManageRoles(ctx, actorID); err != nil {
		return err
	}

	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return ErrSystemRole
	}

	members, err := s.users.ListByRole(ctx, role.Name)
	if err != nil {
		return fmt.Errorf("list role members: %w", err)
	}
	if len(members) > 0 {
		return fmt.Errorf("%w: %d users hold %q", ErrRoleInUse, len(members), role.Name)
	}

	if err := s.roles.Delete(ctx, role.ID); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	s.publishRoleChanged(ctx, *role, "deleted", actorID)

	return nil
}

// SetDefaultRole marks the role assigned to new self-registered users,
// clearing the previous default so exactly one role carries the flag.
func (s *RoleService) SetDefaultRole(ctx context.Context, actorID, roleID string) error {
	if err := s.requireManageRoles(ctx, actorID); err != nil {
		return err
	}

	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if role.IsDefault {
		return nil
	}

	if err := s.roles.ClearDefault(ctx); err != nil {
		return fmt.Errorf("clear default role: %w", err)
	}

	role.IsDefault = true
	role.UpdatedAt = time.Now().UTC()
	if err := s.roles.Update(ctx, *role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	s.publishRoleChanged(ctx, *role, "default_changed", actorID)

	return nil
}

func (s *RoleService) requireManageRoles(ctx context.Context, actorID string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return fmt.Errorf("actor id is required")
	}
	allowed, err := s.permissions.UserHasPermission(ctx, actorID, domain.PermManageRoles)
	if err != nil {
		return fmt.Errorf("check actor permission: %w", err)
	}
	if !allowed {
		return ErrPermissionDenied
	}
	return nil
}

// resyncRoleMembers pushes fresh claims for every user holding the role.
// Best effort: individual failures are logged, tokens converge on the next
// full sync pass or refresh.
func (s *RoleService) resyncRoleMembers(ctx context.Context, roleName string) {
	if s.claims == nil {
		return
	}
	members, err := s.users.ListByRole(ctx, roleName)
	if err != nil {
		s.logger.Warn("list role members for re-sync failed",
			zap.String("role", roleName),
			zap.Error(err),
		)
		return
	}
	for _, member := range members {
		if err := s.claims.SyncUser(ctx, member.ID); err != nil {
			s.logger.Warn("claims re-sync after role change failed",
				zap.String("user_id", member.ID),
				zap.String("role", roleName),
				zap.Error(err),
			)
		}
	}
}

func (s *RoleService) publishRoleChanged(ctx context.Context, role domain.Role, action, actorID string) {
	if s.events == nil {
		return
	}
	event := domain.RoleChangedEvent{
		RoleID:    role.ID,
		Name:      role.Name,
		Action:    action,
		ChangedBy: actorID,
		ChangedAt: time.Now().UTC(),
	}
	if err := s.events.PublishRoleChanged(ctx, event); err != nil {
		s.logger.Warn("publish role changed event failed",
			zap.String("role_id", role.ID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// normalizePermissions trims, deduplicates and validates identifiers against
// the catalog. The wildcard is accepted as an explicit grant-all.
func normalizePermissions(ids []domain.PermissionID) ([]domain.PermissionID, error) {
	seen := make(map[domain.PermissionID]struct{}, len(ids))
	normalized := make([]domain.PermissionID, 0, len(ids))
	for _, id := range ids {
		trimmed := domain.PermissionID(strings.TrimSpace(string(id)))
		if trimmed == "" {
			continue
		}
		if !trimmed.Known() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, trimmed)
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized, nil
}
