package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"event_scraper/internal/domain"
)

type EventStore struct {
	db *sqlx.DB
}

func NewEventStore(db *sqlx.DB) *EventStore {
	return &EventStore{db: db}
}

// ListKeys returns the (title, date, venue) tuple of every stored event in
// one bulk read. The reconciler normalizes these into dedup keys in memory.
func (s *EventStore) ListKeys(ctx context.Context) ([]domain.EventKey, error) {
	query := `SELECT title, to_char(date, 'YYYY-MM-DD') AS date, venue FROM events`

	var keys []domain.EventKey
	err := s.db.SelectContext(ctx, &keys, query)
	return keys, err
}

// InsertBatch writes one batch of events attributed to authorID and returns
// the number of rows actually inserted. The normalized unique index makes
// the write idempotent: rows a concurrent run slipped in between the bulk
// read and this insert fall out via ON CONFLICT DO NOTHING.
func (s *EventStore) InsertBatch(ctx context.Context, events []domain.ExtractedEvent, authorID int64) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO events (title, venue, date, start_time, description, ticket_url, created_by) VALUES ")
	args := make([]interface{}, 0, len(events)*7)

	for i, e := range events {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for col := 0; col < 7; col++ {
			if col > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*7 + col + 1))
		}
		sb.WriteString(")")
		args = append(args, e.Title, e.Venue, e.Date, e.StartTime, e.Description, e.TicketURL, authorID)
	}
	sb.WriteString(" ON CONFLICT DO NOTHING")

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	return int(n), err
}
