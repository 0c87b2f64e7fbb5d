package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RateLimitDecisions   *prometheus.CounterVec
	RateLimitTrackedKeys prometheus.Gauge
	RateLimitEvictedKeys prometheus.Counter
}

// New registers the rate limit collectors with reg. A nil reg creates
// unregistered collectors, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RateLimitDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usergate_ratelimit_decisions_total",
			Help: "Rate limit decisions by scope and outcome",
		}, []string{"scope", "outcome"}),
		RateLimitTrackedKeys: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usergate_ratelimit_tracked_keys",
			Help: "Number of (scope, client) windows currently held in memory",
		}),
		RateLimitEvictedKeys: factory.NewCounter(prometheus.CounterOpts{
			Name: "usergate_ratelimit_evicted_keys_total",
			Help: "Total number of idle windows evicted by the sweeper",
		}),
	}
}

func (m *Metrics) ObserveDecision(scope string, allowed bool) {
	outcome := "rejected"
	if allowed {
		outcome = "allowed"
	}
	m.RateLimitDecisions.WithLabelValues(scope, outcome).Inc()
}

func (m *Metrics) SetTrackedKeys(n int) {
	m.RateLimitTrackedKeys.Set(float64(n))
}

func (m *Metrics) AddEvictedKeys(n int) {
	m.RateLimitEvictedKeys.Add(float64(n))
}
