package source

import (
	"fmt"
	"net/url"
	"strings"

	"event_scraper/internal/domain"
)

// Registry holds the fixed set of venue sources for a deployment. It is
// loaded once at startup and never mutated.
type Registry struct {
	sources []domain.SourceConfig
}

// NewRegistry validates the configured venues and builds the registry.
// A venue with zero URLs is accepted here; the scraper reports it as a
// degraded outcome instead of failing the whole run.
func NewRegistry(sources []domain.SourceConfig) (*Registry, error) {
	seen := make(map[string]struct{}, len(sources))

	for i, src := range sources {
		name := strings.TrimSpace(src.Name)
		if name == "" {
			return nil, fmt.Errorf("venue %d: name is empty", i)
		}

		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("venue %q: duplicate name", src.Name)
		}
		seen[key] = struct{}{}

		for _, raw := range src.URLs {
			u, err := url.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("venue %q: invalid url %q: %w", src.Name, raw, err)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return nil, fmt.Errorf("venue %q: url %q must be http(s)", src.Name, raw)
			}
		}
	}

	out := make([]domain.SourceConfig, len(sources))
	copy(out, sources)

	return &Registry{sources: out}, nil
}

// Sources returns the venues in configuration order.
func (r *Registry) Sources() []domain.SourceConfig {
	return r.sources
}

// Len returns the number of configured venues.
func (r *Registry) Len() int {
	return len(r.sources)
}
