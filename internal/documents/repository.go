package documents

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/shared"
)

// RepositoryPort defines data access for document metadata.
type RepositoryPort interface {
	List(ctx context.Context, employeeID int64, limit, offset int) ([]Document, int, error)
	Get(ctx context.Context, id int64) (*Document, error)
	Create(ctx context.Context, d Document) (*Document, error)
	Rename(ctx context.Context, id int64, title string) error
	Delete(ctx context.Context, id int64) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns a page of documents, optionally scoped to an employee.
func (r *Repository) List(ctx context.Context, employeeID int64, limit, offset int) ([]Document, int, error) {
	where := ` WHERE ($1 = 0 OR employee_id = $1)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`+where, employeeID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, employee_id, title, file_name, content_type, storage_key, uploaded_by, created_at, updated_at
		FROM documents`+where+` ORDER BY id DESC LIMIT $2 OFFSET $3`, employeeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		var d Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

// Get fetches a document by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Document, error) {
	var d Document
	err := scanDocument(r.pool.QueryRow(ctx, `
		SELECT id, employee_id, title, file_name, content_type, storage_key, uploaded_by, created_at, updated_at
		FROM documents WHERE id = $1`, id), &d)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Create registers document metadata.
func (r *Repository) Create(ctx context.Context, d Document) (*Document, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO documents (employee_id, title, file_name, content_type, storage_key, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		d.EmployeeID, d.Title, d.FileName, d.ContentType, d.StorageKey, d.UploadedBy).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Rename updates a document title.
func (r *Repository) Rename(ctx context.Context, id int64, title string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE documents SET title = $2, updated_at = NOW() WHERE id = $1`, id, title)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes document metadata.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteOlderThan removes metadata past the retention cutoff. Used by the
// background retention sweep.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanDocument(row pgx.Row, d *Document) error {
	return row.Scan(&d.ID, &d.EmployeeID, &d.Title, &d.FileName, &d.ContentType, &d.StorageKey, &d.UploadedBy, &d.CreatedAt, &d.UpdatedAt)
}

var _ RepositoryPort = (*Repository)(nil)
