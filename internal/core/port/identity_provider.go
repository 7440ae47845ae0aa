package port

import (
	"context"
	"errors"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
)

var (
	// ErrEmailExists indicates the provider already holds a credential for the email.
	ErrEmailExists = errors.New("identity: email already registered")
	// ErrInvalidEmail indicates the provider rejected the email address.
	ErrInvalidEmail = errors.New("identity: invalid email address")
	// ErrWeakSecret indicates the provider rejected the one-time secret as too weak.
	ErrWeakSecret = errors.New("identity: secret does not meet strength requirements")
	// ErrAccountNotFound indicates no credential exists for the given identifier.
	ErrAccountNotFound = errors.New("identity: account not found")
)

// IdentityProvider is the narrow surface of the hosted identity service this
// subsystem depends on. Call timeouts are owned by implementations; none of
// these operations are retractable once issued.
type IdentityProvider interface {
	// CreateCredential provisions a new account for the email with a
	// generated one-time secret and returns the provider's user id.
	CreateCredential(ctx context.Context, email, secret string) (string, error)
	SendVerificationEmail(ctx context.Context, externalID string) error
	SendPasswordResetEmail(ctx context.Context, email string) error
	// SetExternalClaims stores the claims payload on the account. Tokens
	// already issued keep their old claims until refreshed.
	SetExternalClaims(ctx context.Context, externalID string, claims domain.Claims) error
}
