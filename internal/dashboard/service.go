package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Summary is the aggregate snapshot rendered on the landing page.
type Summary struct {
	Headcount    int            `json:"headcount"`
	PresentToday int            `json:"present_today"`
	Documents    int            `json:"documents"`
	Tasks        map[string]int `json:"tasks"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// Service computes dashboard summaries. Concurrent requests for the same
// summary collapse into a single computation.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
	now   func() time.Time
}

// NewService builds a Service. cache may be nil.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Summary returns the cached snapshot, computing it when absent.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	resultChan := s.group.DoChan(summaryKey, func() (interface{}, error) {
		// The flight is shared with callers that arrive later, so it must
		// not inherit the first caller's cancellation.
		var out Summary
		err := s.cache.FetchJSON(context.WithoutCancel(ctx), summaryKey, &out, s.compute)
		return out, err
	})
	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return Summary{}, res.Err
		}
		return res.Val.(Summary), nil
	}
}

func (s *Service) compute(ctx context.Context) (interface{}, error) {
	headcount, err := s.repo.Headcount(ctx)
	if err != nil {
		return nil, err
	}
	present, err := s.repo.PresentOn(ctx, s.now())
	if err != nil {
		return nil, err
	}
	docs, err := s.repo.DocumentCount(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.TaskCounts(ctx)
	if err != nil {
		return nil, err
	}
	return Summary{
		Headcount:    headcount,
		PresentToday: present,
		Documents:    docs,
		Tasks:        tasks,
		GeneratedAt:  s.now().UTC(),
	}, nil
}
