package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// TokenVerifier validates a session token and returns the subject user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Middleware resolves identities and enforces route permission requirements.
type Middleware struct {
	Tokens     TokenVerifier
	Repo       Repository
	Logger     *slog.Logger
	CookieName string
}

// Authenticate is the session resolver. It extracts the token (cookie
// preferred, bearer header fallback), verifies it, loads the user and the
// role's grant set, and attaches an immutable Identity to the request
// context. Missing or bad tokens short-circuit with 401 before any storage
// read; an inactive account is 403.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		userID, err := m.Tokens.Verify(token)
		if err != nil {
			// Invalid and expired tokens are expected outcomes, not faults.
			// Neither reveals whether any account exists.
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		user, err := m.Repo.GetUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// A token for a deleted account maps to the same 401 as a
				// forged one.
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			m.logError("resolve user", err)
			httpx.RespondError(w, err)
			return
		}
		if !user.IsActive {
			httpx.RespondError(w, shared.ErrAccountInactive)
			return
		}
		grants, err := m.Repo.RolePermissions(r.Context(), user.RoleID)
		if err != nil {
			m.logError("load grants", err)
			httpx.RespondError(w, err)
			return
		}
		identity := NewIdentity(user.ID, user.Email, user.Name, user.RoleName, grants)
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// Require declares the (module, action) pair a route needs. It must run
// inside Authenticate. The response shape is identical for every denial so
// callers cannot tell which grant was missing.
func (m Middleware) Require(module, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			if !Allow(identity, module, action) {
				httpx.RespondError(w, shared.ErrPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) extractToken(r *http.Request) string {
	if m.CookieName != "" {
		if cookie, err := r.Cookie(m.CookieName); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func (m Middleware) logError(msg string, err error) {
	if m.Logger != nil {
		m.Logger.Error(msg, slog.Any("error", err))
	}
}
