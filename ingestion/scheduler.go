package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/camvec/core"
)

const defaultPeriod = time.Minute

// runner is the unit the scheduler drives. *Pipeline satisfies it.
type runner interface {
	Run(ctx context.Context) (*core.RunReport, error)
}

// Scheduler fires pipeline runs on a fixed period. A firing that
// arrives while the previous run is still executing is skipped, so at
// most one run is in flight at any time. The next firing retries
// whatever the skipped one would have covered, since every run
// recomputes its window from now.
type Scheduler struct {
	runner   runner
	period   time.Duration
	running  atomic.Bool
	inFlight sync.WaitGroup
	logger   *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithPeriod sets the interval between firings. Default one minute.
func WithPeriod(period time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if period > 0 {
			s.period = period
		}
	}
}

// WithSchedulerLogger sets a custom logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger.With("component", "scheduler")
		}
	}
}

// NewScheduler creates a scheduler around a pipeline.
func NewScheduler(r runner, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		runner: r,
		period: defaultPeriod,
		logger: slog.Default().With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start fires one run immediately, then on every period tick until ctx
// is cancelled. It blocks, and does not return until the in-flight run
// has finished, so callers may release the pipeline's backends right
// after it returns.
func (s *Scheduler) Start(ctx context.Context) {
	s.fire(ctx)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.inFlight.Wait()
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.fire(ctx)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still in flight, skipping this firing")
		return
	}

	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()
		defer s.running.Store(false)
		if _, err := s.runner.Run(ctx); err != nil {
			s.logger.Error("run failed", "err", err)
		}
	}()
}
