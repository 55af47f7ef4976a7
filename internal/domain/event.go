package domain

import "strings"

// SourceConfig describes one venue to scrape. URLs form a priority chain:
// the scraper tries them in order and stops at the first one that works.
type SourceConfig struct {
	Name  string   `yaml:"name"`
	URLs  []string `yaml:"urls"`
	Hints string   `yaml:"hints"`
}

// ExtractedEvent is a validated event record produced by the extraction
// client. Optional fields are nil when the source page did not carry them.
type ExtractedEvent struct {
	Title       string  `json:"title"`
	Venue       string  `json:"venue"`
	Date        string  `json:"date"` // YYYY-MM-DD
	StartTime   *string `json:"time"`
	Description *string `json:"description"`
	TicketURL   *string `json:"ticket_url"`
}

// EventKey is the stored (title, date, venue) tuple used for deduplication.
type EventKey struct {
	Title string `db:"title"`
	Date  string `db:"date"`
	Venue string `db:"venue"`
}

// DedupKey normalizes a (title, date, venue) tuple into the canonical
// dedup key. Read and write paths must both go through this function.
func DedupKey(title, date, venue string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + date + "|" + strings.ToLower(strings.TrimSpace(venue))
}

// Key returns the normalized dedup key for an extracted event.
func (e ExtractedEvent) Key() string {
	return DedupKey(e.Title, e.Date, e.Venue)
}

// Key returns the normalized dedup key for a stored tuple.
func (k EventKey) Key() string {
	return DedupKey(k.Title, k.Date, k.Venue)
}

// Profile is the authoring identity attached to inserted events.
type Profile struct {
	ID          int64   `db:"id"`
	Email       string  `db:"auth_user_email"`
	DisplayName string  `db:"display_name"`
	AvatarURL   *string `db:"avatar_url"`
}
