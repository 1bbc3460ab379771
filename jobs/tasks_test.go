package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	_ "github.com/meridian-hr/meridian/testing"
)

func TestDigestDayDefaultsToYesterday(t *testing.T) {
	now := func() time.Time {
		return time.Date(2026, time.August, 29, 10, 30, 0, 0, time.UTC)
	}
	day, err := digestDay(AttendanceDigestPayload{}, now)
	if err != nil {
		t.Fatalf("digest day: %v", err)
	}
	want := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Fatalf("expected %s, got %s", want, day)
	}
}

func TestDigestDayExplicit(t *testing.T) {
	day, err := digestDay(AttendanceDigestPayload{Day: "2026-01-15"}, time.Now)
	if err != nil {
		t.Fatalf("digest day: %v", err)
	}
	if day.Format("2006-01-02") != "2026-01-15" {
		t.Fatalf("unexpected day %s", day)
	}
}

func TestDigestDayRejectsGarbage(t *testing.T) {
	if _, err := digestDay(AttendanceDigestPayload{Day: "yesterday"}, time.Now); err == nil {
		t.Fatalf("expected parse error")
	}
}

type countingStore struct {
	calls   int
	cutoffs []time.Time
}

func (s *countingStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.calls++
	s.cutoffs = append(s.cutoffs, cutoff)
	return 3, nil
}

func TestDocumentSweepSkipsZeroRetention(t *testing.T) {
	store := &countingStore{}
	if err := RunDocumentSweep(context.Background(), store, slog.Default(), 0); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("zero retention must not delete anything")
	}
}

func TestDocumentSweepCutoff(t *testing.T) {
	store := &countingStore{}
	retention := 30 * 24 * time.Hour
	if err := RunDocumentSweep(context.Background(), store, nil, retention); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected one delete call, got %d", store.calls)
	}
	want := time.Now().Add(-retention)
	if diff := store.cutoffs[0].Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("cutoff %s too far from expected %s", store.cutoffs[0], want)
	}
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "1", Queue: QueueDefault, Type: task.Type()}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

func TestTriggerEnqueuesKnownJobs(t *testing.T) {
	fake := &fakeEnqueuer{}
	client := &Client{client: fake}

	if _, err := client.Trigger(context.Background(), TaskAttendanceDigest, TriggerOptions{Day: "2026-08-01"}); err != nil {
		t.Fatalf("trigger digest: %v", err)
	}
	if _, err := client.Trigger(context.Background(), TaskDocumentSweep, TriggerOptions{Retention: 24 * time.Hour}); err != nil {
		t.Fatalf("trigger sweep: %v", err)
	}
	if len(fake.tasks) != 2 {
		t.Fatalf("expected 2 enqueued tasks, got %d", len(fake.tasks))
	}
	if fake.tasks[0].Type() != TaskAttendanceDigest || fake.tasks[1].Type() != TaskDocumentSweep {
		t.Fatalf("unexpected task types: %s, %s", fake.tasks[0].Type(), fake.tasks[1].Type())
	}

	var digest AttendanceDigestPayload
	if err := json.Unmarshal(fake.tasks[0].Payload(), &digest); err != nil {
		t.Fatalf("decode digest payload: %v", err)
	}
	if digest.Day != "2026-08-01" {
		t.Fatalf("digest day override lost: %q", digest.Day)
	}
	var sweep DocumentSweepPayload
	if err := json.Unmarshal(fake.tasks[1].Payload(), &sweep); err != nil {
		t.Fatalf("decode sweep payload: %v", err)
	}
	if sweep.Retention != 24*time.Hour {
		t.Fatalf("sweep retention override lost: %s", sweep.Retention)
	}
}

func TestTriggerRejectsUnknownJob(t *testing.T) {
	fake := &fakeEnqueuer{}
	client := &Client{client: fake}

	if _, err := client.Trigger(context.Background(), "reports:rebuild", TriggerOptions{}); err == nil {
		t.Fatalf("expected error for unknown job name")
	}
	if len(fake.tasks) != 0 {
		t.Fatalf("unknown job must not enqueue anything")
	}
}
