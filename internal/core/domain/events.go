package domain

import "time"

// ClaimsSyncedEvent is emitted after a user's claims were pushed to the
// identity provider and mirrored locally.
type ClaimsSyncedEvent struct {
	UserID          string
	Role            string
	PermissionCount int
	Wildcard        bool
	SyncedAt        time.Time
}

// StaffPromotedEvent is emitted once a staff member has been fully
// provisioned with an admin identity.
type StaffPromotedEvent struct {
	StaffID     string
	AdminUserID string
	Email       string
	PromotedBy  string
	PromotedAt  time.Time
}

// RoleChangedEvent is emitted when a role is created, updated or deleted.
type RoleChangedEvent struct {
	RoleID    string
	Name      string
	Action    string
	ChangedBy string
	ChangedAt time.Time
}
