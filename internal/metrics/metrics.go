package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type DraftMetrics interface {
	ActionApplied(format, action string)
	ActionRejected(action, reason string)
	SequenceFinished(format string, elapsed time.Duration)
	LiveMatches(n int)
}

func NewMetrics(registry *prometheus.Registry) DraftMetrics {
	return setupPrometheusMetrics(registry)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ActionApplied(string, string)           {}
func (Nop) ActionRejected(string, string)          {}
func (Nop) SequenceFinished(string, time.Duration) {}
func (Nop) LiveMatches(int)                        {}
