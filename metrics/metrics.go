package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RunsStarted counts rules runs started.
	RunsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "drainage",
		Subsystem: "classify",
		Name:      "runs_started_total",
		Help:      "Total number of rules runs started.",
	})

	// RunsCompleted counts rules runs reaching a terminal status,
	// labeled success or failed.
	RunsCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "drainage",
		Subsystem: "classify",
		Name:      "runs_completed_total",
		Help:      "Total number of rules runs reaching a terminal status, by status.",
	}, []string{"status"})

	// SectionsIngested counts section rows stored, including lettered
	// sub-sections produced by the splitter.
	SectionsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "drainage",
		Subsystem: "classify",
		Name:      "sections_ingested_total",
		Help:      "Total number of section rows stored.",
	})

	// ObservationRulesWritten counts observation rule rows written.
	ObservationRulesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "drainage",
		Subsystem: "classify",
		Name:      "observation_rules_written_total",
		Help:      "Total number of observation rule rows written across all runs.",
	})

	// ClassifyDuration observes wall time of single classification
	// calls.
	ClassifyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "drainage",
		Subsystem: "classify",
		Name:      "classification_duration_seconds",
		Help:      "Duration of individual classification calls.",
		Buckets:   prometheus.DefBuckets,
	})

	// RabbitMQConnected is 1 when the subscriber considers itself
	// connected.
	RabbitMQConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "drainage",
		Subsystem: "classify",
		Name:      "rabbitmq_connected",
		Help:      "Whether the upload-ingested RabbitMQ subscriber is currently connected (best-effort).",
	})
)

// Register registers all collectors with the default registry. Safe to
// call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RunsStarted,
			RunsCompleted,
			SectionsIngested,
			ObservationRulesWritten,
			ClassifyDuration,
			RabbitMQConnected,
		)
	})
}
