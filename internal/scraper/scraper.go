// Package scraper runs the per-venue fetch → reduce → extract chain and
// collects one outcome per venue. Nothing in this package returns an error;
// every failure is folded into the venue's outcome.
package scraper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"event_scraper/internal/domain"
	"event_scraper/internal/htmlreduce"
	"event_scraper/internal/metrics"
)

// Fetcher retrieves raw HTML for one URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor turns reduced HTML into validated events for one venue.
type Extractor interface {
	Extract(ctx context.Context, html string, src domain.SourceConfig, year int) ([]domain.ExtractedEvent, error)
}

// Config holds venue scraper configuration.
type Config struct {
	MaxHTMLLength int
	BatchSize     int
	BatchDelay    time.Duration
	TargetYear    int
}

type VenueScraper struct {
	fetcher   Fetcher
	extractor Extractor
	cfg       Config
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(fetcher Fetcher, extractor Extractor, cfg Config, m *metrics.Metrics, logger *slog.Logger) *VenueScraper {
	return &VenueScraper{
		fetcher:   fetcher,
		extractor: extractor,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}
}

// ScrapeVenue tries each configured URL in order and stops at the first one
// that fetches and extracts without error, even when it yields zero events.
// An empty-but-reachable primary page therefore suppresses the fallback URLs.
func (s *VenueScraper) ScrapeVenue(ctx context.Context, src domain.SourceConfig) domain.VenueScrapeOutcome {
	if len(src.URLs) == 0 {
		return domain.VenueScrapeOutcome{
			Venue:  src.Name,
			Events: []domain.ExtractedEvent{},
			Error:  "no URLs configured",
		}
	}

	var lastErr error
	for _, url := range src.URLs {
		html, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			s.metrics.IncFetch("error")
			s.logger.Warn("page fetch failed", "venue", src.Name, "url", url, "error", err)
			lastErr = err
			continue
		}
		s.metrics.IncFetch("ok")

		reduced := htmlreduce.Reduce(html, s.cfg.MaxHTMLLength)

		events, err := s.extractor.Extract(ctx, reduced, src, s.cfg.TargetYear)
		if err != nil {
			s.metrics.IncExtraction("error")
			s.logger.Warn("extraction failed", "venue", src.Name, "url", url, "error", err)
			lastErr = err
			continue
		}
		s.metrics.IncExtraction("ok")
		s.metrics.AddExtracted(len(events))

		s.logger.Info("venue scraped", "venue", src.Name, "url", url, "events", len(events))
		if events == nil {
			events = []domain.ExtractedEvent{}
		}
		return domain.VenueScrapeOutcome{Venue: src.Name, Events: events}
	}

	return domain.VenueScrapeOutcome{
		Venue:  src.Name,
		Events: []domain.ExtractedEvent{},
		Error:  lastErr.Error(),
	}
}

// ScrapeAll runs the venues in fixed-size concurrent batches, preserving
// registry order in the returned slice. BatchDelay paces consecutive batches.
func (s *VenueScraper) ScrapeAll(ctx context.Context, sources []domain.SourceConfig) []domain.VenueScrapeOutcome {
	outcomes := make([]domain.VenueScrapeOutcome, len(sources))

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	for i := 0; i < len(sources); i += batchSize {
		end := i + batchSize
		if end > len(sources) {
			end = len(sources)
		}

		var wg sync.WaitGroup
		for j := i; j < end; j++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				outcomes[idx] = s.ScrapeVenue(ctx, sources[idx])
			}(j)
		}
		wg.Wait()

		if s.cfg.BatchDelay > 0 && end < len(sources) {
			select {
			case <-ctx.Done():
			case <-time.After(s.cfg.BatchDelay):
			}
		}
	}

	return outcomes
}
