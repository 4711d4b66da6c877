// Package metrics exposes SRest request and worker-pool metrics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config defines how the collectors in this package are named and registered.
type Config struct {
	// Namespace is the metrics namespace (default: "srest").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the request duration histogram buckets.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

func (c Config) withDefaults() Config {
	if c.Namespace == "" {
		c.Namespace = "srest"
	}
	if len(c.Buckets) == 0 {
		c.Buckets = prometheus.DefBuckets
	}
	if c.Registry == nil {
		c.Registry = prometheus.DefaultRegisterer
	}
	return c
}

// Handler returns an HTTP handler exposing the metrics gathered by g.
// A nil g uses the default gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
