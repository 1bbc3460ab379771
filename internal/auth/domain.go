package auth

import "time"

// User represents an authenticated user account. Accounts are never deleted;
// deactivation flips IsActive instead.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	RoleID       int64
	RoleName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
