//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"event_scraper/internal/domain"
	"event_scraper/testdata/utils"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_profiles.up.sql"),
			filepath.Join(migrationsPath, "002_create_events.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM events")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM profiles")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) botID() int64 {
	store := NewProfileStore(s.db, NewTransactionManager(s.db))
	id, err := store.GetOrCreate(s.ctx, "bot@ibiza-scraper.internal")
	s.Require().NoError(err)
	return id
}

func (s *PostgresIntegrationSuite) TestEventStore_InsertBatch() {
	store := NewEventStore(s.db)
	authorID := s.botID()

	events := []domain.ExtractedEvent{
		{
			Title:       "Pyramid",
			Venue:       "Amnesia",
			Date:        "2026-06-27",
			StartTime:   utils.Ptr("23:59"),
			Description: utils.Ptr("Opening night"),
			TicketURL:   utils.Ptr("https://www.amnesia.es/tickets/pyramid"),
		},
		{
			Title: "Solomun +1",
			Venue: "Pacha",
			Date:  "2026-06-28",
		},
	}

	n, err := store.InsertBatch(s.ctx, events, authorID)
	s.NoError(err)
	s.Equal(2, n)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM events WHERE created_by = $1", authorID)
	s.NoError(err)
	s.Equal(2, count)
}

func (s *PostgresIntegrationSuite) TestEventStore_InsertBatch_ConflictsDropSilently() {
	store := NewEventStore(s.db)
	authorID := s.botID()

	events := []domain.ExtractedEvent{
		{Title: "Pyramid", Venue: "Amnesia", Date: "2026-06-27"},
	}
	n, err := store.InsertBatch(s.ctx, events, authorID)
	s.NoError(err)
	s.Equal(1, n)

	// Same event with different casing and padding hits the normalized
	// unique index and falls out of the count.
	again := []domain.ExtractedEvent{
		{Title: "  PYRAMID ", Venue: "amnesia", Date: "2026-06-27"},
		{Title: "Music On", Venue: "Pacha", Date: "2026-06-27"},
	}
	n, err = store.InsertBatch(s.ctx, again, authorID)
	s.NoError(err)
	s.Equal(1, n)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM events")
	s.NoError(err)
	s.Equal(2, count)
}

func (s *PostgresIntegrationSuite) TestEventStore_InsertBatch_Empty() {
	store := NewEventStore(s.db)

	n, err := store.InsertBatch(s.ctx, nil, 1)
	s.NoError(err)
	s.Equal(0, n)
}

func (s *PostgresIntegrationSuite) TestEventStore_ListKeys() {
	store := NewEventStore(s.db)
	authorID := s.botID()

	events := []domain.ExtractedEvent{
		{Title: "Pyramid", Venue: "Amnesia", Date: "2026-06-27"},
		{Title: "Music On", Venue: "Pacha", Date: "2026-07-01"},
	}
	_, err := store.InsertBatch(s.ctx, events, authorID)
	s.NoError(err)

	keys, err := store.ListKeys(s.ctx)
	s.NoError(err)
	s.Len(keys, 2)

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		seen[k.Key()] = struct{}{}
	}
	s.Contains(seen, "pyramid|2026-06-27|amnesia")
	s.Contains(seen, "music on|2026-07-01|pacha")
}

func (s *PostgresIntegrationSuite) TestEventStore_ListKeys_Empty() {
	store := NewEventStore(s.db)

	keys, err := store.ListKeys(s.ctx)
	s.NoError(err)
	s.Len(keys, 0)
}

func (s *PostgresIntegrationSuite) TestProfileStore_GetOrCreate_Idempotent() {
	store := NewProfileStore(s.db, NewTransactionManager(s.db))

	id1, err := store.GetOrCreate(s.ctx, "bot@ibiza-scraper.internal")
	s.NoError(err)
	s.Greater(id1, int64(0))

	id2, err := store.GetOrCreate(s.ctx, "bot@ibiza-scraper.internal")
	s.NoError(err)
	s.Equal(id1, id2)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM profiles")
	s.NoError(err)
	s.Equal(1, count)

	var name string
	err = s.db.GetContext(s.ctx, &name, "SELECT display_name FROM profiles WHERE id = $1", id1)
	s.NoError(err)
	s.Equal("Event Bot", name)
}

func (s *PostgresIntegrationSuite) TestProfileStore_GetOrCreate_DistinctEmails() {
	store := NewProfileStore(s.db, NewTransactionManager(s.db))

	id1, err := store.GetOrCreate(s.ctx, "bot@ibiza-scraper.internal")
	s.NoError(err)

	id2, err := store.GetOrCreate(s.ctx, "other-bot@ibiza-scraper.internal")
	s.NoError(err)
	s.NotEqual(id1, id2)
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	store := NewEventStore(s.db)
	authorID := s.botID()

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		_, err := store.InsertBatch(ctx, []domain.ExtractedEvent{
			{Title: "Should Rollback", Venue: "Amnesia", Date: "2026-06-27"},
		}, authorID)
		if err != nil {
			return err
		}
		return context.Canceled
	})
	s.Error(err)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM events")
	s.NoError(err)
	s.Equal(0, count)
}
