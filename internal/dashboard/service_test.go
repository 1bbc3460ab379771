package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	_ "github.com/meridian-hr/meridian/testing"
)

type stubRepo struct {
	headcount int
	present   int
	documents int
	tasks     map[string]int

	calls   int
	started chan struct{}
	block   chan struct{}
}

func (s *stubRepo) Headcount(ctx context.Context) (int, error) {
	s.calls++
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	return s.headcount, nil
}

func (s *stubRepo) PresentOn(ctx context.Context, day time.Time) (int, error) {
	return s.present, nil
}

func (s *stubRepo) TaskCounts(ctx context.Context) (map[string]int, error) {
	return s.tasks, nil
}

func (s *stubRepo) DocumentCount(ctx context.Context) (int, error) {
	return s.documents, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(repo, NewCache(client, time.Minute))
}

func TestSummaryAggregates(t *testing.T) {
	repo := &stubRepo{
		headcount: 12,
		present:   9,
		documents: 31,
		tasks:     map[string]int{"todo": 4, "doing": 2, "done": 10},
	}
	svc := newTestService(t, repo)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Headcount != 12 || summary.PresentToday != 9 || summary.Documents != 31 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Tasks["doing"] != 2 {
		t.Fatalf("unexpected task counts: %v", summary.Tasks)
	}
	if summary.GeneratedAt.IsZero() {
		t.Fatalf("generated_at not set")
	}
}

func TestSummaryCached(t *testing.T) {
	repo := &stubRepo{headcount: 5, tasks: map[string]int{}}
	svc := newTestService(t, repo)

	if _, err := svc.Summary(context.Background()); err != nil {
		t.Fatalf("first summary: %v", err)
	}
	if _, err := svc.Summary(context.Background()); err != nil {
		t.Fatalf("second summary: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected one aggregate computation, got %d", repo.calls)
	}
}

func TestSummaryCancelledCallerDoesNotFailFlight(t *testing.T) {
	repo := &stubRepo{
		headcount: 7,
		tasks:     map[string]int{},
		started:   make(chan struct{}),
		block:     make(chan struct{}),
	}
	svc := newTestService(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Summary(ctx)
		firstErr <- err
	}()
	<-repo.started
	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: want context.Canceled, got %v", err)
	}

	var got Summary
	secondErr := make(chan error, 1)
	go func() {
		summary, err := svc.Summary(context.Background())
		got = summary
		secondErr <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(repo.block)
	if err := <-secondErr; err != nil {
		t.Fatalf("second caller: %v", err)
	}
	if got.Headcount != 7 {
		t.Fatalf("unexpected summary after cancellation: %+v", got)
	}
}

func TestSummaryWithoutCache(t *testing.T) {
	repo := &stubRepo{headcount: 5, tasks: map[string]int{}}
	svc := NewService(repo, nil)

	if _, err := svc.Summary(context.Background()); err != nil {
		t.Fatalf("first summary: %v", err)
	}
	if _, err := svc.Summary(context.Background()); err != nil {
		t.Fatalf("second summary: %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("nil cache must recompute, got %d calls", repo.calls)
	}
}
