package employees

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/shared"
)

// RepositoryPort defines data access methods for employees.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]Employee, int, error)
	Get(ctx context.Context, id int64) (*Employee, error)
	Create(ctx context.Context, e Employee) (*Employee, error)
	Update(ctx context.Context, e Employee) error
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns a filtered page of employees plus the total count.
func (r *Repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]Employee, int, error) {
	where := ` WHERE ($1 = '' OR department = $1) AND ($2 = '' OR full_name ILIKE '%' || $2 || '%')`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+where, filters.Department, filters.Search).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, full_name, email, department, position, hired_at, created_at, updated_at
		FROM employees`+where+` ORDER BY id LIMIT $3 OFFSET $4`,
		filters.Department, filters.Search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.FullName, &e.Email, &e.Department, &e.Position, &e.HiredAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

// Get fetches an employee by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Employee, error) {
	var e Employee
	err := r.pool.QueryRow(ctx, `
		SELECT id, full_name, email, department, position, hired_at, created_at, updated_at
		FROM employees WHERE id = $1`, id).
		Scan(&e.ID, &e.FullName, &e.Email, &e.Department, &e.Position, &e.HiredAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Create inserts a new employee record.
func (r *Repository) Create(ctx context.Context, e Employee) (*Employee, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO employees (full_name, email, department, position, hired_at, created_at, updated_at)
		VALUES ($1, LOWER($2), $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		e.FullName, e.Email, e.Department, e.Position, e.HiredAt).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return &e, nil
}

// Update rewrites the mutable employee fields.
func (r *Repository) Update(ctx context.Context, e Employee) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE employees
		SET full_name = $2, department = $3, position = $4, updated_at = NOW()
		WHERE id = $1`,
		e.ID, e.FullName, e.Department, e.Position)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an employee record.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
