package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAttendanceDigest rolls yesterday's attendance into a digest row.
	TaskAttendanceDigest = "attendance:digest"
	// TaskDocumentSweep removes document metadata past the retention window.
	TaskDocumentSweep = "documents:sweep"
)

// AttendanceDigestPayload selects the day to summarise. A zero Day means
// the previous calendar day.
type AttendanceDigestPayload struct {
	Day string `json:"day"`
}

// DocumentSweepPayload carries the retention window for the sweep.
type DocumentSweepPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewAttendanceDigestTask constructs an Asynq task.
func NewAttendanceDigestTask(payload AttendanceDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAttendanceDigest, data), nil
}

// NewDocumentSweepTask constructs an Asynq task.
func NewDocumentSweepTask(payload DocumentSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDocumentSweep, data), nil
}

func decodePayload[T any](t *asynq.Task) (T, error) {
	var payload T
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, asynq.SkipRetry
	}
	return payload, nil
}

func digestDay(payload AttendanceDigestPayload, now func() time.Time) (time.Time, error) {
	if payload.Day == "" {
		y := now().UTC().AddDate(0, 0, -1)
		return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", payload.Day)
}
