package domain

import "time"

// Claims is the authorization payload pushed into the identity provider's
// external claims for a user. Access-control decisions made from a live
// token lag the latest push until the provider reissues the token; that
// staleness window is part of the contract, not a defect.
type Claims struct {
	Role            string         `json:"role"`
	Permissions     []PermissionID `json:"permissions"`
	CentreIDs       []string       `json:"centreIds"`
	PrimaryCentreID *string        `json:"primaryCentreId,omitempty"`
	UpdatedAt       time.Time      `json:"lastUpdated"`
}

// ClaimsSnapshot is the locally mirrored copy of the last claims payload
// pushed for a user. Diagnostics only: it is never read back into permission
// resolution and must not back access decisions.
type ClaimsSnapshot struct {
	UserID          string         `json:"userId"`
	Role            string         `json:"role"`
	Permissions     []PermissionID `json:"permissions"`
	CentreIDs       []string       `json:"centreIds"`
	PrimaryCentreID *string        `json:"primaryCentreId,omitempty"`
	LastUpdated     time.Time      `json:"lastUpdated"`
}
