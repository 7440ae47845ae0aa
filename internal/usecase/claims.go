package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/port"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository"
)

const (
	defaultSyncChunkSize  = 10
	defaultSyncChunkDelay = time.Second
)

// ErrSyncFailed indicates the claims push to the identity provider failed.
var ErrSyncFailed = errors.New("claims sync failed")

// ClaimsService pushes resolved authorization state into the identity
// provider's external claims and mirrors the payload locally. Claims take
// effect on the next token refresh; the mirror is diagnostics only.
type ClaimsService struct {
	users    port.UserRepository
	roles    port.RoleRepository
	mirror   port.ClaimsMirror
	provider port.IdentityProvider
	events   port.EventPublisher
	logger   *zap.Logger

	chunkSize  int
	chunkDelay time.Duration
	sleep      func(time.Duration)
	now        func() time.Time
}

// NewClaimsService constructs a ClaimsService with default batch tuning.
func NewClaimsService(users port.UserRepository, roles port.RoleRepository, mirror port.ClaimsMirror, provider port.IdentityProvider, events port.EventPublisher, logger *zap.Logger) *ClaimsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimsService{
		users:      users,
		roles:      roles,
		mirror:     mirror,
		provider:   provider,
		events:     events,
		logger:     logger,
		chunkSize:  defaultSyncChunkSize,
		chunkDelay: defaultSyncChunkDelay,
		sleep:      time.Sleep,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithBatchTuning overrides chunk size and inter-chunk delay.
func (s *ClaimsService) WithBatchTuning(chunkSize int, chunkDelay time.Duration) *ClaimsService {
	if chunkSize > 0 {
		s.chunkSize = chunkSize
	}
	if chunkDelay >= 0 {
		s.chunkDelay = chunkDelay
	}
	return s
}

// SyncUser resolves the user's effective permissions, pushes the claims
// payload to the identity provider and then writes the mirror snapshot. A
// missing role is tolerated (the payload carries an empty permission set); a
// missing user is fatal. If the provider call fails the mirror is left
// untouched so it never claims a push that did not happen.
func (s *ClaimsService) SyncUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user %s: %w", userID, err)
	}

	var role *domain.Role
	switch loaded, err := s.roles.GetByName(ctx, user.Role); {
	case err == nil:
		role = loaded
	case errors.Is(err, repository.ErrNotFound):
		// A dangling role must not abort the sync for the remaining
		// claim fields; the user simply carries no role permissions
		// until the role is restored.
		s.logger.Warn("role missing during claims sync",
			zap.String("user_id", user.ID),
			zap.String("role", user.Role),
		)
	default:
		return fmt.Errorf("load role %q: %w", user.Role, err)
	}

	effective := ResolveEffective(*user, role)
	now := s.now()

	claims := domain.Claims{
		Role:            user.Role,
		Permissions:     effective.Slice(),
		CentreIDs:       user.CentreIDs,
		PrimaryCentreID: user.PrimaryCentreID,
		UpdatedAt:       now,
	}

	if err := s.provider.SetExternalClaims(ctx, user.ID, claims); err != nil {
		return fmt.Errorf("%w: user %s: %v", ErrSyncFailed, user.ID, err)
	}

	snapshot := domain.ClaimsSnapshot{
		UserID:          user.ID,
		Role:            claims.Role,
		Permissions:     claims.Permissions,
		CentreIDs:       claims.CentreIDs,
		PrimaryCentreID: claims.PrimaryCentreID,
		LastUpdated:     now,
	}
	if err := s.mirror.Put(ctx, snapshot); err != nil {
		return fmt.Errorf("write claims mirror for user %s: %w", user.ID, err)
	}

	if s.events != nil {
		event := domain.ClaimsSyncedEvent{
			UserID:          user.ID,
			Role:            user.Role,
			PermissionCount: effective.Len(),
			Wildcard:        effective.All(),
			SyncedAt:        now,
		}
		if err := s.events.PublishClaimsSynced(ctx, event); err != nil {
			s.logger.Warn("publish claims synced event failed",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Snapshot returns the mirrored claims payload for diagnostics.
func (s *ClaimsService) Snapshot(ctx context.Context, userID string) (*domain.ClaimsSnapshot, error) {
	snapshot, err := s.mirror.Get(ctx, strings.TrimSpace(userID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("read claims mirror for user %s: %w", userID, err)
	}
	return snapshot, nil
}
