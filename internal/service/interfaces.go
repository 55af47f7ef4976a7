package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"event_scraper/internal/domain"
)

type EventStore interface {
	ListKeys(ctx context.Context) ([]domain.EventKey, error)
	InsertBatch(ctx context.Context, events []domain.ExtractedEvent, authorID int64) (int, error)
}

type ProfileStore interface {
	GetOrCreate(ctx context.Context, email string) (int64, error)
}

type Scraper interface {
	ScrapeAll(ctx context.Context, sources []domain.SourceConfig) []domain.VenueScrapeOutcome
}

type Publisher interface {
	Publish(ctx context.Context, event domain.ExtractedEvent) error
	Close() error
}
