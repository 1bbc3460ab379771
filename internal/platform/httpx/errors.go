package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-hr/meridian/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
//
// Every 401 body is identical regardless of why authentication failed, and
// every plain permission denial shares one shape; only the business-rule
// violations (last administrator, self role change) carry a message the
// caller can act on. Unexpected errors become an opaque 500.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthorized", shared.ErrUnauthenticated.Error())
	case errors.Is(err, shared.ErrAccountInactive):
		Problem(w, http.StatusForbidden, "Forbidden", shared.ErrAccountInactive.Error())
	case errors.Is(err, shared.ErrPermissionDenied):
		Problem(w, http.StatusForbidden, "Forbidden", shared.ErrPermissionDenied.Error())
	case errors.Is(err, shared.ErrLastAdmin):
		Problem(w, http.StatusForbidden, "Forbidden", shared.ErrLastAdmin.Error())
	case errors.Is(err, shared.ErrSelfRoleChange):
		Problem(w, http.StatusForbidden, "Forbidden", shared.ErrSelfRoleChange.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
