package rbac

import "time"

// Role represents a high-level permission grouping.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic capability as a (module, action) pair.
type Permission struct {
	ID     int64
	Module string
	Action string
}

// Key returns the canonical "module:action" form of the permission.
func (p Permission) Key() string {
	return p.Module + ":" + p.Action
}

// Identity is the request-scoped representation of the authenticated caller.
// It is built fresh by the session resolver on every request and never
// mutated afterwards.
type Identity struct {
	UserID int64
	Email  string
	Name   string
	Role   string
	grants map[string]struct{}
}

// NewIdentity constructs an Identity with the given grant set.
func NewIdentity(userID int64, email, name, role string, grants []Permission) Identity {
	set := make(map[string]struct{}, len(grants))
	for _, g := range grants {
		set[g.Key()] = struct{}{}
	}
	return Identity{UserID: userID, Email: email, Name: name, Role: role, grants: set}
}

// HasGrant reports whether the identity's role was granted (module, action).
func (id Identity) HasGrant(module, action string) bool {
	_, ok := id.grants[module+":"+action]
	return ok
}

// Grants returns the identity's grant keys, for introspection endpoints.
func (id Identity) Grants() []string {
	keys := make([]string, 0, len(id.grants))
	for k := range id.grants {
		keys = append(keys, k)
	}
	return keys
}
