package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates the request payload failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated covers missing, invalid and expired credentials.
	// The message never states whether the account exists.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrAccountInactive indicates the account was found but deactivated.
	ErrAccountInactive = errors.New("account is inactive")
	// ErrPermissionDenied indicates the identity lacks the required grant.
	// The message does not reveal which grant was required.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrLastAdmin blocks mutations that would leave zero active administrators.
	ErrLastAdmin = errors.New("at least one active administrator must remain")
	// ErrSelfRoleChange blocks users from changing their own role.
	ErrSelfRoleChange = errors.New("users may not change their own role")
)

// UserSafeMessage returns a message safe to show to the caller.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrAccountInactive),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrLastAdmin),
		errors.Is(err, ErrSelfRoleChange):
		return err.Error()
	default:
		return "internal error"
	}
}
