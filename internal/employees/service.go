package employees

import (
	"context"
	"fmt"

	"github.com/meridian-hr/meridian/internal/shared"
)

// Service handles employee business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a filtered page of employees.
func (s *Service) List(ctx context.Context, filters ListFilters, page, perPage int) ([]Employee, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	employees, total, err := s.repo.List(ctx, filters, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("employees: list: %w", err)
	}
	return employees, shared.NewPagination(p.Page, p.PerPage, total), nil
}

// Get fetches one employee.
func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	return s.repo.Get(ctx, id)
}

// Create adds an employee record.
func (s *Service) Create(ctx context.Context, e Employee) (*Employee, error) {
	return s.repo.Create(ctx, e)
}

// Update rewrites an employee record.
func (s *Service) Update(ctx context.Context, e Employee) (*Employee, error) {
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, e.ID)
}

// Delete removes an employee record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
