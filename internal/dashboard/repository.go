package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository exposes the aggregate queries backing the dashboard summary.
type Repository interface {
	Headcount(ctx context.Context) (int, error)
	PresentOn(ctx context.Context, day time.Time) (int, error)
	TaskCounts(ctx context.Context) (map[string]int, error)
	DocumentCount(ctx context.Context) (int, error)
}

// PGRepository runs the aggregates against Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Headcount(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count)
	return count, err
}

// PresentOn counts employees with a clock-in on the given day.
func (r *PGRepository) PresentOn(ctx context.Context, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT employee_id) FROM attendance_records
                 WHERE clock_in >= $1 AND clock_in < $2`,
		start, start.AddDate(0, 0, 1)).Scan(&count)
	return count, err
}

func (r *PGRepository) TaskCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *PGRepository) DocumentCount(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}
