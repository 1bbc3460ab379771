package rbac_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meridian-hr/meridian/internal/rbac"
	"github.com/meridian-hr/meridian/internal/shared"
	_ "github.com/meridian-hr/meridian/testing"
)

type stubVerifier struct {
	userID int64
	err    error
}

func (s stubVerifier) Verify(token string) (int64, error) {
	return s.userID, s.err
}

type stubRepo struct {
	t      *testing.T
	user   *rbac.ResolvedUser
	grants []rbac.Permission

	// failIfQueried marks stores that must never be reached, e.g. when the
	// request carries no token at all.
	failIfQueried bool
}

func (s *stubRepo) GetUser(ctx context.Context, id int64) (*rbac.ResolvedUser, error) {
	if s.failIfQueried {
		s.t.Fatalf("storage queried for an unauthenticated request")
	}
	if s.user == nil {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) RolePermissions(ctx context.Context, roleID int64) ([]rbac.Permission, error) {
	if s.failIfQueried {
		s.t.Fatalf("storage queried for an unauthenticated request")
	}
	return s.grants, nil
}

func okHandler(identityChecked *rbac.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identityChecked != nil {
			id, ok := rbac.IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "no identity", http.StatusInternalServerError)
				return
			}
			*identityChecked = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateMissingToken(t *testing.T) {
	mw := rbac.Middleware{
		Tokens:     stubVerifier{},
		Repo:       &stubRepo{t: t, failIfQueried: true},
		CookieName: "meridian_token",
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(nil)).ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	mw := rbac.Middleware{
		Tokens:     stubVerifier{err: errors.New("token invalid")},
		Repo:       &stubRepo{t: t, failIfQueried: true},
		CookieName: "meridian_token",
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(&http.Cookie{Name: "meridian_token", Value: "garbage"})
	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(nil)).ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestAuthenticateDeletedAccount(t *testing.T) {
	mw := rbac.Middleware{
		Tokens:     stubVerifier{userID: 42},
		Repo:       &stubRepo{t: t},
		CookieName: "meridian_token",
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(&http.Cookie{Name: "meridian_token", Value: "stale"})
	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(nil)).ServeHTTP(res, req)

	// Same shape as a forged token.
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	mw := rbac.Middleware{
		Tokens: stubVerifier{userID: 7},
		Repo: &stubRepo{t: t, user: &rbac.ResolvedUser{
			ID: 7, Email: "gone@test.local", Name: "Gone", RoleID: 3,
			RoleName: rbac.RoleHRSpecialist, IsActive: false,
		}},
		CookieName: "meridian_token",
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(&http.Cookie{Name: "meridian_token", Value: "valid"})
	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(nil)).ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}

func TestAuthenticateBuildsIdentity(t *testing.T) {
	mw := rbac.Middleware{
		Tokens: stubVerifier{userID: 7},
		Repo: &stubRepo{
			t: t,
			user: &rbac.ResolvedUser{
				ID: 7, Email: "hr@test.local", Name: "HR", RoleID: 3,
				RoleName: rbac.RoleHRSpecialist, IsActive: true,
			},
			grants: []rbac.Permission{{Module: rbac.ModuleEmployees, Action: rbac.ActionRead}},
		},
		CookieName: "meridian_token",
	}

	var identity rbac.Identity
	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	req.AddCookie(&http.Cookie{Name: "meridian_token", Value: "valid"})
	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(&identity)).ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if identity.UserID != 7 || identity.Role != rbac.RoleHRSpecialist {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if !identity.HasGrant(rbac.ModuleEmployees, rbac.ActionRead) {
		t.Fatalf("expected employees:read grant on identity")
	}
}

func TestAuthenticateBearerFallback(t *testing.T) {
	mw := rbac.Middleware{
		Tokens: stubVerifier{userID: 7},
		Repo: &stubRepo{
			t: t,
			user: &rbac.ResolvedUser{
				ID: 7, Email: "hr@test.local", Name: "HR", RoleID: 3,
				RoleName: rbac.RoleHRSpecialist, IsActive: true,
			},
		},
		CookieName: "meridian_token",
	}

	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(nil)).ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 via bearer header, got %d", res.Code)
	}
}

func TestRequireDeniesMissingGrant(t *testing.T) {
	mw := rbac.Middleware{}

	identity := rbac.NewIdentity(7, "hr@test.local", "HR", rbac.RoleHRSpecialist, []rbac.Permission{
		{Module: rbac.ModuleEmployees, Action: rbac.ActionRead},
	})

	handler := mw.Require(rbac.ModuleUsers, rbac.ActionRead)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(rbac.ContextWithIdentity(req.Context(), identity))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}

func TestRequireAllowsGrantedRoute(t *testing.T) {
	mw := rbac.Middleware{}

	identity := rbac.NewIdentity(7, "hr@test.local", "HR", rbac.RoleHRSpecialist, []rbac.Permission{
		{Module: rbac.ModuleEmployees, Action: rbac.ActionRead},
	})

	handler := mw.Require(rbac.ModuleEmployees, rbac.ActionRead)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	req = req.WithContext(rbac.ContextWithIdentity(req.Context(), identity))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestRequireWithoutResolver(t *testing.T) {
	mw := rbac.Middleware{}
	handler := mw.Require(rbac.ModuleEmployees, rbac.ActionRead)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without resolved identity, got %d", res.Code)
	}
}
