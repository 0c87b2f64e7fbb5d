package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the API level Prometheus collectors.
type Metrics struct {
	UsersCreated    prometheus.Counter
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Errors          *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg creates unregistered
// collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "usergate_users_created_total",
			Help: "Total number of users created in the system",
		}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usergate_http_requests_total",
			Help: "HTTP requests by method and status code",
		}, []string{"method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "usergate_http_request_duration_seconds",
			Help:    "HTTP request latency by method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usergate_errors_total",
			Help: "Error responses by taxonomy code",
		}, []string{"code"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) ObserveRequest(method string, status int, duration time.Duration) {
	m.Requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (m *Metrics) ObserveError(code string) {
	m.Errors.WithLabelValues(code).Inc()
}
