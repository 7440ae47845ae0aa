package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/port"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository"
)

var (
	// ErrUserNotFound is returned when no user record exists for the given id.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound indicates a user's role name does not resolve to a stored role.
	// Callers must treat it as "no permissions"; a dangling role reference never escalates access.
	ErrRoleNotFound = errors.New("role not found")
	// ErrPermissionDenied indicates the actor lacks the required capability.
	ErrPermissionDenied = errors.New("insufficient permissions")
)

// PermissionService resolves effective permission sets from role assignments
// and per-user overrides.
type PermissionService struct {
	users port.UserRepository
	roles port.RoleRepository
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(users port.UserRepository, roles port.RoleRepository) *PermissionService {
	return &PermissionService{users: users, roles: roles}
}

// ResolveEffective computes the effective permission set for a user record
// against its role. Pure: the super-admin role, or a wildcard in either the
// role's permissions or the user's overrides, grants everything; otherwise
// the result is the deduplicated union of both sets. A nil role contributes
// nothing.
func ResolveEffective(user domain.UserRecord, role *domain.Role) domain.PermissionSet {
	if user.Role == domain.RoleSuperAdmin {
		return domain.AllPermissions()
	}
	set := domain.NewPermissionSet(user.CustomPermissions...)
	if role != nil {
		set = set.Union(domain.NewPermissionSet(role.Permissions...))
	}
	return set
}

// ResolvePermissions loads the user and its role and returns the effective
// permission set. A missing role yields the zero set together with
// ErrRoleNotFound so callers can distinguish "no permissions" from an empty
// but valid grant.
func (s *PermissionService) ResolvePermissions(ctx context.Context, userID string) (domain.PermissionSet, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.PermissionSet{}, fmt.Errorf("user id is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.PermissionSet{}, ErrUserNotFound
		}
		return domain.PermissionSet{}, fmt.Errorf("load user %s: %w", userID, err)
	}

	if user.Role == domain.RoleSuperAdmin {
		return domain.AllPermissions(), nil
	}

	role, err := s.roles.GetByName(ctx, user.Role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.PermissionSet{}, fmt.Errorf("%w: %s", ErrRoleNotFound, user.Role)
		}
		return domain.PermissionSet{}, fmt.Errorf("load role %q: %w", user.Role, err)
	}

	return ResolveEffective(*user, role), nil
}

// GetUser loads a user record by id.
func (s *PermissionService) GetUser(ctx context.Context, userID string) (*domain.UserRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	return user, nil
}

// UserHasPermission reports whether the user's effective set grants the
// permission. A dangling role reference resolves to false rather than an
// error so route guards degrade to denial.
func (s *PermissionService) UserHasPermission(ctx context.Context, userID string, permission domain.PermissionID) (bool, error) {
	set, err := s.ResolvePermissions(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return false, nil
		}
		return false, err
	}
	return set.Has(permission), nil
}
