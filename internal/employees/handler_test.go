package employees_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-hr/meridian/internal/employees"
	"github.com/meridian-hr/meridian/internal/rbac"
	"github.com/meridian-hr/meridian/internal/shared"
	_ "github.com/meridian-hr/meridian/testing"
)

type stubRepo struct {
	employees map[int64]*employees.Employee
	nextID    int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{employees: make(map[int64]*employees.Employee), nextID: 1}
}

func (s *stubRepo) List(ctx context.Context, filters employees.ListFilters, limit, offset int) ([]employees.Employee, int, error) {
	var out []employees.Employee
	for _, e := range s.employees {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (*employees.Employee, error) {
	e, ok := s.employees[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (s *stubRepo) Create(ctx context.Context, e employees.Employee) (*employees.Employee, error) {
	for _, existing := range s.employees {
		if existing.Email == e.Email {
			return nil, shared.ErrDuplicate
		}
	}
	e.ID = s.nextID
	s.nextID++
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	s.employees[e.ID] = &e
	return &e, nil
}

func (s *stubRepo) Update(ctx context.Context, e employees.Employee) error {
	existing, ok := s.employees[e.ID]
	if !ok {
		return shared.ErrNotFound
	}
	existing.FullName = e.FullName
	existing.Department = e.Department
	existing.Position = e.Position
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := s.employees[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.employees, id)
	return nil
}

var _ employees.RepositoryPort = (*stubRepo)(nil)

func newRouter(repo employees.RepositoryPort, identity rbac.Identity) http.Handler {
	handler := employees.NewHandler(nil, employees.NewService(repo), rbac.Middleware{})
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(rbac.ContextWithIdentity(r.Context(), identity)))
		})
	})
	router.Route("/employees", handler.MountRoutes)
	return router
}

func hrIdentity() rbac.Identity {
	var grants []rbac.Permission
	for _, entry := range rbac.Catalog() {
		if entry.GrantedTo(rbac.RoleHRSpecialist) {
			grants = append(grants, rbac.Permission{Module: entry.Module, Action: entry.Action})
		}
	}
	return rbac.NewIdentity(2, "hr@test.local", "HR", rbac.RoleHRSpecialist, grants)
}

func directorIdentity() rbac.Identity {
	var grants []rbac.Permission
	for _, entry := range rbac.Catalog() {
		if entry.GrantedTo(rbac.RoleDirector) {
			grants = append(grants, rbac.Permission{Module: entry.Module, Action: entry.Action})
		}
	}
	return rbac.NewIdentity(3, "director@test.local", "Director", rbac.RoleDirector, grants)
}

const employeeBody = `{"full_name":"Alice Ardent","email":"alice@test.local","department":"Engineering","position":"Engineer","hired_at":"2024-03-01"}`

func TestHRCanCreateEmployee(t *testing.T) {
	router := newRouter(newStubRepo(), hrIdentity())

	req := httptest.NewRequest(http.MethodPost, "/employees/", strings.NewReader(employeeBody))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), "2024-03-01") {
		t.Fatalf("expected hired_at in response, got %s", res.Body.String())
	}
}

func TestDirectorCannotCreateEmployee(t *testing.T) {
	router := newRouter(newStubRepo(), directorIdentity())

	req := httptest.NewRequest(http.MethodPost, "/employees/", strings.NewReader(employeeBody))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}

func TestDirectorCanListEmployees(t *testing.T) {
	repo := newStubRepo()
	if _, err := repo.Create(context.Background(), employees.Employee{
		FullName: "Alice Ardent", Email: "alice@test.local", HiredAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed repo: %v", err)
	}
	router := newRouter(repo, directorIdentity())

	req := httptest.NewRequest(http.MethodGet, "/employees/", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Alice Ardent") {
		t.Fatalf("expected employee in response")
	}
}

func TestHRCannotDeleteEmployee(t *testing.T) {
	repo := newStubRepo()
	created, err := repo.Create(context.Background(), employees.Employee{
		FullName: "Alice Ardent", Email: "alice@test.local", HiredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed repo: %v", err)
	}
	router := newRouter(repo, hrIdentity())

	req := httptest.NewRequest(http.MethodDelete, "/employees/1", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
	if _, ok := repo.employees[created.ID]; !ok {
		t.Fatalf("employee must survive a denied delete")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newStubRepo()
	router := newRouter(repo, hrIdentity())

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/employees/", strings.NewReader(employeeBody))
		req.Header.Set("Content-Type", "application/json")
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		if res.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, res.Code)
		}
	}
}

func TestCreateBadDate(t *testing.T) {
	router := newRouter(newStubRepo(), hrIdentity())

	body := `{"full_name":"A","email":"a@test.local","department":"D","position":"P","hired_at":"March 1st"}`
	req := httptest.NewRequest(http.MethodPost, "/employees/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetMissingEmployee(t *testing.T) {
	router := newRouter(newStubRepo(), hrIdentity())

	req := httptest.NewRequest(http.MethodGet, "/employees/999", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}
