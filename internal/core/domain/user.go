package domain

import "time"

// PromotionState tracks progress of the staff-to-admin provisioning
// workflow. It is persisted on the staff record after each externally
// visible step so an interrupted promotion can resume instead of minting a
// second identity-provider credential.
type PromotionState string

const (
	PromotionStateNone              PromotionState = ""
	PromotionStateCredentialCreated PromotionState = "credential_created"
	PromotionStateCompleted         PromotionState = "completed"
)

// UserRecord mirrors the persisted representation of a platform user:
// clients, staff members and admin identities all share this shape.
type UserRecord struct {
	ID                string
	Email             string
	FirstName         string
	LastName          string
	Phone             *string
	Role              string
	CustomPermissions []PermissionID
	CentreIDs         []string
	PrimaryCentreID   *string
	Position          *string
	Department        *string
	IsActive          bool

	// Promotion bookkeeping. HasAdminAccount=true implies AdminUserID is
	// set and a UserRecord with that id and the admin role exists. The
	// store has no cross-document transactions, so the workflow enforces
	// this rather than the schema.
	HasAdminAccount bool
	AdminUserID     *string
	PromotionState  PromotionState
	PromotedAt      *time.Time
	PromotedBy      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins the name parts for display and audit notes.
func (u UserRecord) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
