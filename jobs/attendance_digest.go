package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/meridian-hr/meridian/internal/jobs"
)

// RunAttendanceDigest rolls one day of attendance records into a digest row.
// The upsert makes reruns for the same day safe.
func RunAttendanceDigest(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger, day time.Time) error {
	if pool == nil {
		return nil
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var present, open int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT employee_id),
                        COUNT(*) FILTER (WHERE clock_out IS NULL)
                 FROM attendance_records
                 WHERE clock_in >= $1 AND clock_in < $2`,
		start, end).Scan(&present, &open)
	if err != nil {
		if logger != nil {
			logger.Error("attendance digest query", slog.Any("error", err))
		}
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO attendance_digests (day, present, open_records, generated_at)
                 VALUES ($1, $2, $3, NOW())
                 ON CONFLICT (day) DO UPDATE
                 SET present = EXCLUDED.present,
                     open_records = EXCLUDED.open_records,
                     generated_at = NOW()`,
		start, present, open)
	if err != nil {
		if logger != nil {
			logger.Error("attendance digest upsert", slog.Any("error", err))
		}
		return err
	}
	if logger != nil {
		logger.Info("attendance digest written",
			slog.String("day", start.Format("2006-01-02")),
			slog.Int("present", present),
			slog.Int("open_records", open))
	}
	return nil
}

// AttendanceDigestHandler adapts RunAttendanceDigest to an Asynq handler.
func AttendanceDigestHandler(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("attendance_digest")
		payload, err := decodePayload[AttendanceDigestPayload](t)
		if err != nil {
			return tracker.End(err)
		}
		day, err := digestDay(payload, time.Now)
		if err != nil {
			return tracker.End(asynq.SkipRetry)
		}
		return tracker.End(RunAttendanceDigest(ctx, pool, logger, day))
	}
}
