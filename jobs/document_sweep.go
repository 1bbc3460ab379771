package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-hr/meridian/internal/documents"
	jobmetrics "github.com/meridian-hr/meridian/internal/jobs"
)

// DocumentStore is the slice of the documents repository the sweep needs.
type DocumentStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

var _ DocumentStore = (*documents.Repository)(nil)

// RunDocumentSweep deletes document metadata older than the retention window.
func RunDocumentSweep(ctx context.Context, store DocumentStore, logger *slog.Logger, retention time.Duration) error {
	if store == nil || retention <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-retention)
	removed, err := store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		if logger != nil {
			logger.Error("document sweep", slog.Any("error", err))
		}
		return err
	}
	if logger != nil {
		logger.Info("document sweep done",
			slog.Int64("removed", removed),
			slog.Time("cutoff", cutoff))
	}
	return nil
}

// DocumentSweepHandler adapts RunDocumentSweep to an Asynq handler. The
// payload retention overrides the configured default when positive.
func DocumentSweepHandler(store DocumentStore, logger *slog.Logger, metrics *jobmetrics.Metrics, defaultRetention time.Duration) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("document_sweep")
		payload, err := decodePayload[DocumentSweepPayload](t)
		if err != nil {
			return tracker.End(err)
		}
		retention := payload.Retention
		if retention <= 0 {
			retention = defaultRetention
		}
		return tracker.End(RunDocumentSweep(ctx, store, logger, retention))
	}
}
