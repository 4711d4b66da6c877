package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Suhaibinator/SRest/pkg/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestMetrics is an aspect recording per-route request counts, durations
// and the number of requests in flight. Durations cover offloaded work, since
// After runs once the whole request series has completed.
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

type requestStartKey struct{}

// NewRequestMetrics creates the request collectors and registers them with
// config.Registry. It panics if they are already registered there.
func NewRequestMetrics(config Config) *RequestMetrics {
	config = config.withDefaults()
	factory := promauto.With(config.Registry)

	return &RequestMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of dispatched requests",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request duration in seconds, including offloaded work",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method", "route"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_in_flight",
			Help:        "Number of dispatched requests that have not completed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Before implements common.Aspect.
func (m *RequestMetrics) Before(w http.ResponseWriter, r *http.Request) {
	m.inFlight.Inc()
	router.SetValue(r, requestStartKey{}, time.Now())
}

// After implements common.Aspect.
func (m *RequestMetrics) After(w http.ResponseWriter, r *http.Request) {
	m.inFlight.Dec()

	status := router.ResponseStatus(w)
	if status == 0 {
		status = http.StatusOK
	}
	route := router.FullPath(r)

	m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	if start, ok := router.Value(r, requestStartKey{}).(time.Time); ok {
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	}
}
