package domain

import (
	"sort"
	"time"
)

// PermissionID identifies a single capability in the permission catalog.
type PermissionID string

// PermissionWildcard is the reserved identifier granting every permission
// check unconditionally when present in a role or user override.
const PermissionWildcard PermissionID = "*"

// Permission catalog. The catalog is closed: role and override mutations
// accept only identifiers listed here (plus the wildcard).
const (
	PermViewStaff           PermissionID = "VIEW_STAFF"
	PermManageStaff         PermissionID = "MANAGE_STAFF"
	PermViewClients         PermissionID = "VIEW_CLIENTS"
	PermManageClients       PermissionID = "MANAGE_CLIENTS"
	PermViewOwnAppointments PermissionID = "VIEW_OWN_APPOINTMENTS"
	PermViewCentres         PermissionID = "VIEW_CENTRES"
	PermManageCentres       PermissionID = "MANAGE_CENTRES"
	PermViewReports         PermissionID = "VIEW_REPORTS"
	PermManageRoles         PermissionID = "MANAGE_ROLES"
	PermPromoteStaff        PermissionID = "PROMOTE_STAFF"
	PermManageSystem        PermissionID = "MANAGE_SYSTEM"
)

var catalog = map[PermissionID]struct{}{
	PermViewStaff:           {},
	PermManageStaff:         {},
	PermViewClients:         {},
	PermManageClients:       {},
	PermViewOwnAppointments: {},
	PermViewCentres:         {},
	PermManageCentres:       {},
	PermViewReports:         {},
	PermManageRoles:         {},
	PermPromoteStaff:        {},
	PermManageSystem:        {},
}

// Known reports whether the identifier belongs to the catalog. The wildcard
// is treated as known.
func (p PermissionID) Known() bool {
	if p == PermissionWildcard {
		return true
	}
	_, ok := catalog[p]
	return ok
}

// CatalogPermissions returns every catalog identifier sorted by name.
func CatalogPermissions() []PermissionID {
	ids := make([]PermissionID, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Well-known role names. System roles are seeded at bootstrap and can never
// be deleted or renamed.
const (
	RoleSuperAdmin = "super-admin"
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleClient     = "client"
)

// Role bundles a reusable set of permissions under a name.
type Role struct {
	ID          string
	Name        string
	Description *string
	Permissions []PermissionID
	IsSystem    bool
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasWildcard reports whether the role grants everything.
func (r Role) HasWildcard() bool {
	for _, p := range r.Permissions {
		if p == PermissionWildcard {
			return true
		}
	}
	return false
}

// PermissionSet is a resolved effective permission set. The zero value
// grants nothing.
type PermissionSet struct {
	all bool
	ids map[PermissionID]struct{}
}

// NewPermissionSet builds a set from the given identifiers, deduplicating.
// A wildcard among them produces the all-granting set.
func NewPermissionSet(ids ...PermissionID) PermissionSet {
	set := PermissionSet{ids: make(map[PermissionID]struct{}, len(ids))}
	for _, id := range ids {
		if id == PermissionWildcard {
			return AllPermissions()
		}
		if id == "" {
			continue
		}
		set.ids[id] = struct{}{}
	}
	return set
}

// AllPermissions returns the set against which every check succeeds.
func AllPermissions() PermissionSet {
	return PermissionSet{all: true}
}

// Has reports whether the set grants the permission.
func (s PermissionSet) Has(p PermissionID) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[p]
	return ok
}

// All reports whether the set grants everything.
func (s PermissionSet) All() bool {
	return s.all
}

// Len returns the number of discrete permissions; zero for the all set.
func (s PermissionSet) Len() int {
	return len(s.ids)
}

// Union combines two sets.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	if s.all || other.all {
		return AllPermissions()
	}
	merged := PermissionSet{ids: make(map[PermissionID]struct{}, len(s.ids)+len(other.ids))}
	for id := range s.ids {
		merged.ids[id] = struct{}{}
	}
	for id := range other.ids {
		merged.ids[id] = struct{}{}
	}
	return merged
}

// Slice returns the permissions sorted by name. The all-granting set is
// represented as the single wildcard entry, matching the claims payload the
// identity provider stores.
func (s PermissionSet) Slice() []PermissionID {
	if s.all {
		return []PermissionID{PermissionWildcard}
	}
	ids := make([]PermissionID, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
