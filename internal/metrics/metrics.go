package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the ingestion pipeline.
type Metrics struct {
	Registry             *prometheus.Registry
	FetchesTotal         *prometheus.CounterVec
	ExtractionsTotal     *prometheus.CounterVec
	EventsExtractedTotal prometheus.Counter
	EventsInsertedTotal  prometheus.Counter
	RunDuration          prometheus.Histogram
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_page_fetches_total",
			Help: "Total listing-page fetch attempts by result.",
		},
		[]string{"result"},
	)
	extractions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_extractions_total",
			Help: "Total extraction-service calls by result.",
		},
		[]string{"result"},
	)
	extracted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_events_extracted_total",
			Help: "Total validated events returned by extraction.",
		},
	)
	inserted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_events_inserted_total",
			Help: "Total new events written to the store.",
		},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_run_duration_seconds",
			Help:    "End-to-end duration of one pipeline run.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(fetches, extractions, extracted, inserted, runDuration)

	return &Metrics{
		Registry:             registry,
		FetchesTotal:         fetches,
		ExtractionsTotal:     extractions,
		EventsExtractedTotal: extracted,
		EventsInsertedTotal:  inserted,
		RunDuration:          runDuration,
	}
}

// IncFetch counts one fetch attempt with a result label ("ok" or "error").
func (m *Metrics) IncFetch(result string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(result).Inc()
}

// IncExtraction counts one extraction-service call.
func (m *Metrics) IncExtraction(result string) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(result).Inc()
}

// AddExtracted counts validated events returned by extraction.
func (m *Metrics) AddExtracted(n int) {
	if m == nil {
		return
	}
	m.EventsExtractedTotal.Add(float64(n))
}

// AddInserted counts events actually written to the store.
func (m *Metrics) AddInserted(n int) {
	if m == nil {
		return
	}
	m.EventsInsertedTotal.Add(float64(n))
}

// ObserveRun records the duration of one pipeline run.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
}
