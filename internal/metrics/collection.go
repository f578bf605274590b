package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusMetrics struct {
	actionsApplied   prometheus.CounterVec
	actionsRejected  prometheus.CounterVec
	sequenceDuration prometheus.HistogramVec
	liveMatches      prometheus.Gauge
}

func setupPrometheusMetrics(registry *prometheus.Registry) prometheusMetrics {
	factory := promauto.With(registry)

	actionsApplied := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cupkeeper_actions_applied_total",
			Help: "Bans, picks and side choices applied to a sequence",
		}, []string{"format", "action"})

	actionsRejected := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cupkeeper_actions_rejected_total",
			Help: "Actions refused by the sequence rules, by reason",
		}, []string{"action", "reason"})

	sequenceDuration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cupkeeper_sequence_duration_seconds",
			Help:    "Time from match creation to the end of its sequence",
			Buckets: prometheus.ExponentialBuckets(30, 2, 8),
		}, []string{"format"})

	liveMatches := factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "cupkeeper_live_matches",
			Help: "Matches currently held by the coordinator",
		})

	return prometheusMetrics{
		actionsApplied:   *actionsApplied,
		actionsRejected:  *actionsRejected,
		sequenceDuration: *sequenceDuration,
		liveMatches:      liveMatches,
	}
}

func (metrics prometheusMetrics) ActionApplied(format, action string) {
	metrics.actionsApplied.With(prometheus.Labels{"format": format, "action": action}).Inc()
}

func (metrics prometheusMetrics) ActionRejected(action, reason string) {
	metrics.actionsRejected.With(prometheus.Labels{"action": action, "reason": reason}).Inc()
}

func (metrics prometheusMetrics) SequenceFinished(format string, elapsed time.Duration) {
	metrics.sequenceDuration.With(prometheus.Labels{"format": format}).Observe(elapsed.Seconds())
}

func (metrics prometheusMetrics) LiveMatches(n int) {
	metrics.liveMatches.Set(float64(n))
}
