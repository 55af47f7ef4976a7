package service

import "event_scraper/internal/domain"

// filterNew drops candidates whose normalized dedup key already exists in
// the store, and duplicates within the candidate set itself (first one wins).
// Dedup is computed entirely in memory against one bulk read, so store load
// stays flat no matter how many candidates a run produces.
func filterNew(candidates []domain.ExtractedEvent, existing []domain.EventKey) []domain.ExtractedEvent {
	keys := make(map[string]struct{}, len(existing)+len(candidates))
	for _, k := range existing {
		keys[k.Key()] = struct{}{}
	}

	var out []domain.ExtractedEvent
	for _, e := range candidates {
		key := e.Key()
		if _, ok := keys[key]; ok {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
