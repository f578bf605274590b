package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := setupPrometheusMetrics(registry)

	m.ActionApplied("bo3", "ban")
	m.ActionApplied("bo3", "ban")
	m.ActionRejected("pick", "unknown_map")
	m.SequenceFinished("bo3", 3*time.Minute)
	m.LiveMatches(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.actionsApplied.With(prometheus.Labels{"format": "bo3", "action": "ban"})))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.actionsRejected.With(prometheus.Labels{"action": "pick", "reason": "unknown_map"})))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.liveMatches))
	assert.Equal(t, 1, testutil.CollectAndCount(&m.sequenceDuration))
}
