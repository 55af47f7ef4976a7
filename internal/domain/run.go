package domain

import "time"

// VenueScrapeOutcome is the per-venue result of one run. Error is non-fatal
// metadata: a venue with an error and zero events completed in degraded mode.
type VenueScrapeOutcome struct {
	Venue  string           `json:"venue"`
	Events []ExtractedEvent `json:"events"`
	Error  string           `json:"error,omitempty"`
}

// RunSummary is the terminal artifact of one pipeline run.
type RunSummary struct {
	StartedAt     time.Time            `json:"started_at"`
	FinishedAt    time.Time            `json:"finished_at"`
	Outcomes      []VenueScrapeOutcome `json:"outcomes"`
	NewEventCount int                  `json:"new_event_count"`
}
