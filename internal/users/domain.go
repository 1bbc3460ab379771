package users

import "time"

// User represents a user account for management. Accounts are soft-state:
// deactivation flips IsActive, rows are never deleted.
type User struct {
	ID        int64
	Email     string
	Name      string
	RoleID    int64
	RoleName  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserInput carries the fields for a new account.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	RoleName string
}

// UpdateUserInput carries the mutable account fields.
type UpdateUserInput struct {
	Name     string
	RoleName string
}
