package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/shared"
)

// RepositoryPort defines data access for attendance records.
type RepositoryPort interface {
	ClockIn(ctx context.Context, employeeID int64, at time.Time, note string) (*Record, error)
	ClockOut(ctx context.Context, employeeID int64, at time.Time) (*Record, error)
	ListForEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]Record, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ClockIn opens a new attendance record. An employee with an open record
// cannot clock in again.
func (r *Repository) ClockIn(ctx context.Context, employeeID int64, at time.Time, note string) (*Record, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The advisory lock serializes clock-ins per employee, so the open-record
	// check below cannot race a concurrent insert.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, employeeID); err != nil {
		return nil, err
	}
	var open int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendance_records
		WHERE employee_id = $1 AND clock_out IS NULL`, employeeID).Scan(&open)
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, shared.ErrDuplicate
	}
	rec := Record{EmployeeID: employeeID, ClockIn: at, Note: note}
	err = tx.QueryRow(ctx, `
		INSERT INTO attendance_records (employee_id, clock_in, note)
		VALUES ($1, $2, $3)
		RETURNING id`, employeeID, at, note).Scan(&rec.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ClockOut closes the employee's open record.
func (r *Repository) ClockOut(ctx context.Context, employeeID int64, at time.Time) (*Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `
		UPDATE attendance_records
		SET clock_out = $2
		WHERE employee_id = $1 AND clock_out IS NULL
		RETURNING id, employee_id, clock_in, clock_out, note`, employeeID, at).
		Scan(&rec.ID, &rec.EmployeeID, &rec.ClockIn, &rec.ClockOut, &rec.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ListForEmployee returns records within [from, to].
func (r *Repository) ListForEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, employee_id, clock_in, clock_out, note
		FROM attendance_records
		WHERE employee_id = $1 AND clock_in >= $2 AND clock_in <= $3
		ORDER BY clock_in DESC`, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.ClockIn, &rec.ClockOut, &rec.Note); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
