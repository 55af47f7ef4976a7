package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"event_scraper/internal/domain"
	"event_scraper/internal/metrics"
	"event_scraper/internal/source"
)

// Config holds run-level tunables.
type Config struct {
	BotEmail        string
	InsertBatchSize int
}

// RunService drives one end-to-end scrape run: ensure the bot authoring
// identity, scrape every venue, reconcile against the store, insert the
// survivors, and assemble the summary.
type RunService struct {
	registry  *source.Registry
	scraper   Scraper
	events    EventStore
	profiles  ProfileStore
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cfg       Config
}

func NewRunService(
	registry *source.Registry,
	scraper Scraper,
	events EventStore,
	profiles ProfileStore,
	publisher Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *RunService {
	return &RunService{
		registry:  registry,
		scraper:   scraper,
		events:    events,
		profiles:  profiles,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run executes the pipeline once. It returns an error only for run-fatal
// failures: the bot profile lookup and the store's bulk key read. Per-venue
// failures are carried in the summary's outcomes instead.
func (s *RunService) Run(ctx context.Context) (*domain.RunSummary, error) {
	startedAt := time.Now().UTC()
	s.logger.Info("starting scrape run", "venues", s.registry.Len())

	authorID, err := s.profiles.GetOrCreate(ctx, s.cfg.BotEmail)
	if err != nil {
		return nil, fmt.Errorf("ensure bot profile: %w", err)
	}

	outcomes := s.scraper.ScrapeAll(ctx, s.registry.Sources())

	inserted, err := s.insertNew(ctx, outcomes, authorID)
	if err != nil {
		return nil, err
	}

	finishedAt := time.Now().UTC()
	s.metrics.AddInserted(inserted)
	s.metrics.ObserveRun(finishedAt.Sub(startedAt))

	s.logger.Info("scrape run completed",
		"venues", len(outcomes),
		"new_events", inserted,
		"duration", finishedAt.Sub(startedAt),
	)

	return &domain.RunSummary{
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
		Outcomes:      outcomes,
		NewEventCount: inserted,
	}, nil
}

// insertNew reconciles the scraped candidates against the store and writes
// the survivors in bounded batches. A failed batch is logged and skipped;
// the remaining batches still run.
func (s *RunService) insertNew(ctx context.Context, outcomes []domain.VenueScrapeOutcome, authorID int64) (int, error) {
	var candidates []domain.ExtractedEvent
	for _, o := range outcomes {
		candidates = append(candidates, o.Events...)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	existing, err := s.events.ListKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list existing events: %w", err)
	}

	newEvents := filterNew(candidates, existing)
	s.logger.Info("reconciled candidates",
		"scraped", len(candidates),
		"existing", len(existing),
		"new", len(newEvents),
	)
	if len(newEvents) == 0 {
		return 0, nil
	}

	batchSize := s.cfg.InsertBatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	total := 0
	for i := 0; i < len(newEvents); i += batchSize {
		end := i + batchSize
		if end > len(newEvents) {
			end = len(newEvents)
		}
		batch := newEvents[i:end]

		n, err := s.events.InsertBatch(ctx, batch, authorID)
		if err != nil {
			s.logger.Error("insert batch failed", "size", len(batch), "error", err)
			continue
		}
		total += n

		s.publish(ctx, batch)
	}

	return total, nil
}

func (s *RunService) publish(ctx context.Context, events []domain.ExtractedEvent) {
	if s.publisher == nil {
		return
	}
	for _, e := range events {
		if err := s.publisher.Publish(ctx, e); err != nil {
			s.logger.Warn("publish event failed", "title", e.Title, "venue", e.Venue, "error", err)
		}
	}
}
