// internal/queue/scheduler.go
package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/service"
)

// Runner is the dispatch engine as the scheduler sees it.
type Runner interface {
	Run(ctx context.Context, job service.DispatchJob) error
}

// InProcScheduler runs dispatch jobs fire-and-forget in the API process,
// with a single-flight guard per campaign id: scheduling a campaign that is
// already running is a no-op, which closes the duplicate-send race between a
// live worker and a concurrent resume call.
type InProcScheduler struct {
	Engine Runner
	Logger *zap.SugaredLogger

	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

func NewInProcScheduler(engine Runner, logger *zap.SugaredLogger) *InProcScheduler {
	return &InProcScheduler{
		Engine:  engine,
		Logger:  logger,
		running: make(map[string]struct{}),
	}
}

func (s *InProcScheduler) Schedule(job service.DispatchJob) error {
	s.mu.Lock()
	if _, busy := s.running[job.CampaignID]; busy {
		s.mu.Unlock()
		s.Logger.Infow("dispatch already in flight, coalescing", "campaign_id", job.CampaignID)
		return nil
	}
	s.running[job.CampaignID] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.running, job.CampaignID)
			s.mu.Unlock()
		}()

		if err := s.Engine.Run(context.Background(), job); err != nil {
			s.Logger.Errorw("dispatch run failed", "campaign_id", job.CampaignID, "error", err)
		}
	}()
	return nil
}

// Wait blocks until all in-flight dispatch runs finish. Used on shutdown and
// in tests.
func (s *InProcScheduler) Wait() {
	s.wg.Wait()
}

var _ service.Scheduler = (*InProcScheduler)(nil)
