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
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/logger"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/security"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository"
)

const temporarySecretBytes = 24

var (
	// ErrAlreadyPromoted indicates the staff record already holds a linked admin account.
	ErrAlreadyPromoted = errors.New("staff member already promoted")
	// ErrStaffInactive indicates the staff record is deactivated and cannot be promoted.
	ErrStaffInactive = errors.New("staff record is inactive")
)

// PromotionError reports a promotion failure after the admin credential was
// created. CredentialID names the identity-provider account that now exists
// without a matching profile or promotion marker, so the caller can retry
// (the workflow resumes with the existing credential) or remediate manually.
type PromotionError struct {
	Step         string
	CredentialID string
	Err          error
}

func (e *PromotionError) Error() string {
	return fmt.Sprintf("promotion failed at %s (credential %s): %v", e.Step, e.CredentialID, e.Err)
}

func (e *PromotionError) Unwrap() error { return e.Err }

// PromotionService converts a staff record into a fully provisioned admin
// account: credential creation, verification/reset dispatch, admin profile
// creation, and marking the originating staff record.
type PromotionService struct {
	users       port.UserRepository
	permissions *PermissionService
	provider    port.IdentityProvider
	events      port.EventPublisher
	secrets     *security.SecretPolicy
	logger      *zap.Logger
	now         func() time.Time
}

// NewPromotionService constructs a PromotionService.
func NewPromotionService(users port.UserRepository, permissions *PermissionService, provider port.IdentityProvider, events port.EventPublisher, logger *zap.Logger) *PromotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{
		users:       users,
		permissions: permissions,
		provider:    provider,
		events:      events,
		secrets:     security.DefaultSecretPolicy(),
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Promote provisions an admin identity for the staff member and returns the
// new admin user id. The actor must hold the promote capability; a staff
// record that already has an admin account is rejected without any writes.
// Workflow progress is persisted on the staff record after credential
// creation so a retry resumes from profile creation instead of minting a
// second credential.
func (s *PromotionService) Promote(ctx context.Context, staffID, actorID string) (string, error) {
	staffID = strings.TrimSpace(staffID)
	actorID = strings.TrimSpace(actorID)
	if staffID == "" {
		return "", fmt.Errorf("staff id is required")
	}
	if actorID == "" {
		return "", fmt.Errorf("actor id is required")
	}

	allowed, err := s.permissions.UserHasPermission(ctx, actorID, domain.PermPromoteStaff)
	if err != nil {
		return "", fmt.Errorf("check actor permission: %w", err)
	}
	if !allowed {
		return "", ErrPermissionDenied
	}

	staff, err := s.users.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("load staff record %s: %w", staffID, err)
	}
	if staff.HasAdminAccount {
		return "", ErrAlreadyPromoted
	}
	if !staff.IsActive {
		return "", ErrStaffInactive
	}
	if strings.TrimSpace(staff.Email) == "" {
		return "", fmt.Errorf("staff record %s: %w", staffID, port.ErrInvalidEmail)
	}

	adminID, err := s.ensureCredential(ctx, staff)
	if err != nil {
		return "", err
	}

	// The credential is already usable; a failed dispatch is surfaced as
	// a warning, never an abort.
	if err := s.provider.SendVerificationEmail(ctx, adminID); err != nil {
		s.logger.Warn("verification email dispatch failed",
			zap.String("credential_id", adminID),
			zap.Error(err),
		)
	}
	if err := s.provider.SendPasswordResetEmail(ctx, staff.Email); err != nil {
		s.logger.Warn("password reset dispatch failed",
			zap.String("email", logger.MaskEmail(staff.Email)),
			zap.Error(err),
		)
	}

	now := s.now()
	admin := domain.UserRecord{
		ID:              adminID,
		Email:           staff.Email,
		FirstName:       staff.FirstName,
		LastName:        staff.LastName,
		Phone:           staff.Phone,
		Role:            domain.RoleAdmin,
		CentreIDs:       staff.CentreIDs,
		PrimaryCentreID: staff.PrimaryCentreID,
		Position:        staff.Position,
		Department:      staff.Department,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	// Admins rely on role permissions; overrides stay empty unless
	// explicitly elevated later.
	if err := s.users.Create(ctx, admin); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return "", &PromotionError{Step: "create_profile", CredentialID: adminID, Err: err}
	}

	if err := s.users.MarkPromoted(ctx, staffID, adminID, actorID, now); err != nil {
		return "", &PromotionError{Step: "mark_promoted", CredentialID: adminID, Err: err}
	}

	note := fmt.Sprintf("promoted to admin by %s; admin account %s", actorID, adminID)
	if err := s.users.AppendNote(ctx, staffID, note); err != nil {
		s.logger.Warn("append promotion note failed",
			zap.String("staff_id", staffID),
			zap.Error(err),
		)
	}

	if s.events != nil {
		event := domain.StaffPromotedEvent{
			StaffID:     staffID,
			AdminUserID: adminID,
			Email:       logger.MaskEmail(staff.Email),
			PromotedBy:  actorID,
			PromotedAt:  now,
		}
		if err := s.events.PublishStaffPromoted(ctx, event); err != nil {
			s.logger.Warn("publish staff promoted event failed",
				zap.String("staff_id", staffID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("staff member promoted",
		zap.String("staff_id", staffID),
		zap.String("admin_user_id", adminID),
		zap.String("promoted_by", actorID),
	)

	return adminID, nil
}

// ensureCredential mints a new identity-provider credential, or reuses the
// one recorded by a previous attempt that failed past credential creation.
func (s *PromotionService) ensureCredential(ctx context.Context, staff *domain.UserRecord) (string, error) {
	if staff.PromotionState == domain.PromotionStateCredentialCreated && staff.AdminUserID != nil {
		s.logger.Info("resuming promotion with existing credential",
			zap.String("staff_id", staff.ID),
			zap.String("credential_id", *staff.AdminUserID),
		)
		return *staff.AdminUserID, nil
	}

	secret, err := security.GenerateTemporarySecret(temporarySecretBytes)
	if err != nil {
		return "", fmt.Errorf("generate temporary secret: %w", err)
	}
	if err := s.secrets.Validate(secret); err != nil {
		return "", fmt.Errorf("%w: %v", port.ErrWeakSecret, err)
	}

	adminID, err := s.provider.CreateCredential(ctx, staff.Email, secret)
	if err != nil {
		return "", classifyCredentialError(err)
	}

	// Persist progress before any further side effects; nothing else has
	// been written yet, so a failure here still leaves the credential id
	// attached to the staff record for resumption.
	if err := s.users.SetPromotionState(ctx, staff.ID, domain.PromotionStateCredentialCreated, &adminID); err != nil {
		return "", &PromotionError{Step: "persist_state", CredentialID: adminID, Err: err}
	}

	return adminID, nil
}

// classifyCredentialError keeps provider sentinels intact for user-facing
// messaging and wraps everything else as an unclassified creation failure.
func classifyCredentialError(err error) error {
	switch {
	case errors.Is(err, port.ErrEmailExists),
		errors.Is(err, port.ErrInvalidEmail),
		errors.Is(err, port.ErrWeakSecret):
		return err
	default:
		return fmt.Errorf("create admin credential: %w", err)
	}
}
