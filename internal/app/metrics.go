package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels of scheduler_generations_total
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the pipeline collectors on their own registry
type Metrics struct {
	registry           *prometheus.Registry
	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	parsedRecords      prometheus.Histogram
	ignoredLines       prometheus.Counter
	downloads          *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_generations_total",
			Help: "Schedule generation calls by outcome",
		}, []string{"outcome"}),
		generationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_generation_duration_seconds",
			Help:    "Duration of the remote generation call",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
		parsedRecords: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_parsed_records",
			Help:    "Day records parsed per generated schedule",
			Buckets: []float64{0, 1, 3, 7, 14, 30, 60},
		}),
		ignoredLines: factory.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_ignored_lines_total",
			Help: "Generator output lines that matched neither Day nor Milestone",
		}),
		downloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_downloads_total",
			Help: "Rendered downloads by format",
		}, []string{"format"}),
	}
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
