package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for a pressure card run.
// There is no scrape endpoint; the registry is flushed to a textfile
// for the node-exporter textfile collector when configured.

// Registry holds every metric of this package
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// API Call metrics
	APICallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pressure_api_calls_total",
			Help: "Total number of NHL API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pressure_api_call_duration_seconds",
			Help:    "Duration of NHL API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Pipeline metrics
	GamesFetched = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "pressure_games_fetched",
			Help: "Number of games in the fetched schedule window",
		},
	)

	TeamsScored = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "pressure_teams_scored",
			Help: "Number of teams with a computed pressure score",
		},
	)

	PagesWritten = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "pressure_pages_written",
			Help: "Number of card pages written by the last run",
		},
	)

	RunDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pressure_run_duration_seconds",
			Help:    "Duration of a full pipeline run in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
	)

	// Error metrics
	ErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pressure_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	LastSuccessfulRun = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "pressure_last_successful_run_timestamp",
			Help: "Timestamp of last successful run",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordRun records the outcome of a pipeline run
func RecordRun(games, teams, pages int, duration float64, success bool) {
	GamesFetched.Set(float64(games))
	TeamsScored.Set(float64(teams))
	PagesWritten.Set(float64(pages))
	RunDuration.Observe(duration)

	if success {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// WriteTextfile writes the registry in text exposition format to path.
// The parent directory is created when missing.
func WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
