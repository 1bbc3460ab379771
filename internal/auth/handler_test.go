package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-hr/meridian/internal/auth"
	"github.com/meridian-hr/meridian/internal/rbac"
	"github.com/meridian-hr/meridian/internal/shared"
	_ "github.com/meridian-hr/meridian/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) *auth.Handler {
	t.Helper()
	tokens := auth.NewTokens("test-secret", time.Hour)
	service := auth.NewService(repo, tokens)
	return auth.NewHandler(nil, service, nil, "meridian_token", time.Hour, false)
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &auth.User{
		ID:           1,
		Email:        "user@test.local",
		Name:         "Test User",
		PasswordHash: string(hashed),
		RoleName:     rbac.RoleHRSpecialist,
		IsActive:     true,
	}
}

func postLogin(handler *auth.Handler, body string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestLoginSuccess(t *testing.T) {
	handler := newAuthHandler(t, &stubRepo{user: activeUser(t, "correctpass1")})

	res := postLogin(handler, `{"email":"user@test.local","password":"correctpass1"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var payload struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Token == "" {
		t.Fatalf("expected a token in the response")
	}
	if payload.User.Role != rbac.RoleHRSpecialist {
		t.Fatalf("unexpected role %q", payload.User.Role)
	}

	cookieSet := false
	for _, c := range res.Result().Cookies() {
		if c.Name == "meridian_token" && c.Value == payload.Token && c.HttpOnly {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Fatalf("expected an HttpOnly session cookie carrying the token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	handler := newAuthHandler(t, &stubRepo{user: activeUser(t, "correctpass1")})

	res := postLogin(handler, `{"email":"user@test.local","password":"wrongpass99"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	handler := newAuthHandler(t, &stubRepo{})

	res := postLogin(handler, `{"email":"nobody@test.local","password":"whatever1"}`)
	// Unknown account and wrong password must be indistinguishable.
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t, "correctpass1")
	user.IsActive = false
	handler := newAuthHandler(t, &stubRepo{user: user})

	res := postLogin(handler, `{"email":"user@test.local","password":"correctpass1"}`)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for inactive account, got %d", res.Code)
	}
}

func TestLoginMalformedBody(t *testing.T) {
	handler := newAuthHandler(t, &stubRepo{})

	for _, body := range []string{`not json`, `{"email":"bad","password":"short"}`, `{}`} {
		res := postLogin(handler, body)
		if res.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, res.Code)
		}
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	handler := newAuthHandler(t, &stubRepo{})

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	cleared := false
	for _, c := range res.Result().Cookies() {
		if c.Name == "meridian_token" && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected the session cookie to be cleared")
	}
}

func TestMeRequiresIdentity(t *testing.T) {
	handler := newAuthHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	res := httptest.NewRecorder()
	handler.Me(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", res.Code)
	}

	identity := rbac.NewIdentity(1, "user@test.local", "Test User", rbac.RoleHRSpecialist, []rbac.Permission{
		{Module: rbac.ModuleEmployees, Action: rbac.ActionRead},
	})
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(rbac.ContextWithIdentity(req.Context(), identity))
	res = httptest.NewRecorder()
	handler.Me(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 with identity, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "employees:read") {
		t.Fatalf("expected grants in response, got %s", res.Body.String())
	}
}
