package scheduler

import (
	"context"
	"log/slog"
	"time"

	"event_scraper/internal/domain"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (*domain.RunSummary, error)
}

// Scheduler drives the pipeline on a fixed interval for deployments without
// an external cron. The HTTP trigger stays available either way.
type Scheduler struct {
	runner     Runner
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewScheduler(runner Runner, interval, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.run(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	runCtx := ctx
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	if _, err := s.runner.Run(runCtx); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
	}
}
