package extract

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"event_scraper/internal/domain"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type candidate struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Time        *string `json:"time"`
	Description *string `json:"description"`
	TicketURL   *string `json:"ticket_url"`
}

// ParseEvents locates the first JSON-array-shaped substring in the service
// reply and validates each element independently. The service is told to
// return a bare array, but in practice it sometimes wraps it in explanatory
// prose; everything outside the array is ignored. Elements that fail
// validation are skipped, never the whole batch.
func ParseEvents(text, venue string, year int) []domain.ExtractedEvent {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil
	}

	events := make([]domain.ExtractedEvent, 0, len(raw))
	for _, el := range raw {
		var c candidate
		if err := json.Unmarshal(el, &c); err != nil {
			continue
		}

		title := strings.TrimSpace(c.Title)
		if title == "" {
			continue
		}
		if !validDate(c.Date, year) {
			continue
		}

		events = append(events, domain.ExtractedEvent{
			Title:       title,
			Venue:       venue,
			Date:        c.Date,
			StartTime:   trimOptional(c.Time),
			Description: trimOptional(c.Description),
			TicketURL:   trimOptional(c.TicketURL),
		})
	}

	return events
}

// validDate requires YYYY-MM-DD shape, a real calendar date, and the
// target year.
func validDate(date string, year int) bool {
	if !dateRe.MatchString(date) {
		return false
	}
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return d.Year() == year
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
