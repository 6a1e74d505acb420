package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeResolved labels healing runs that ended in resolution.
	OutcomeResolved = "resolved"
	// OutcomeStalled labels healing runs whose remediation did not succeed.
	OutcomeStalled = "stalled"
)

var (
	logsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "data_sentry",
			Name:      "logs_ingested_total",
			Help:      "Total number of log records appended to the log store, partitioned by level.",
		},
		[]string{"level"},
	)

	alertsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "data_sentry",
			Name:      "alerts_created_total",
			Help:      "Total number of alerts materialized by the incident detector.",
		},
	)

	healingRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "data_sentry",
			Name:      "healing_runs_total",
			Help:      "Total number of completed healing sequences, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	healingDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "data_sentry",
			Name:      "healing_seconds",
			Help:      "Healing sequence duration in seconds, diagnosis and action delays included.",
			Buckets:   []float64{1, 2, 4, 6, 8, 10, 15, 30, 60},
		},
	)
)

// Register attaches data-sentry collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		logsIngestedTotal,
		alertsCreatedTotal,
		healingRunsTotal,
		healingDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func CountLogIngested(level string) {
	logsIngestedTotal.WithLabelValues(level).Inc()
}

func CountAlertCreated() {
	alertsCreatedTotal.Inc()
}

// ObserveHealing records a completed healing sequence with its outcome label.
func ObserveHealing(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeStalled {
		label = OutcomeResolved
	}
	healingRunsTotal.WithLabelValues(label).Inc()
	healingDurationSeconds.Observe(duration.Seconds())
}
