package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveDecision("login", true)
	m.ObserveDecision("login", false)
	m.ObserveDecision("login", false)
	m.SetTrackedKeys(4)
	m.AddEvictedKeys(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitDecisions.WithLabelValues("login", "allowed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RateLimitDecisions.WithLabelValues("login", "rejected")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RateLimitTrackedKeys))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RateLimitEvictedKeys))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 3)
}
