package metrics

import (
	"github.com/Suhaibinator/SRest/pkg/task"
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource is implemented by task.Pool.
type StatsSource interface {
	Stats() []task.QueueStats
}

// PoolCollector reports the state of every worker queue at scrape time.
type PoolCollector struct {
	source StatsSource

	workers   *prometheus.Desc
	queued    *prometheus.Desc
	running   *prometheus.Desc
	completed *prometheus.Desc
}

// NewPoolCollector creates a collector for source. Register it with
// prometheus.Registerer.Register or RegisterPool.
func NewPoolCollector(source StatsSource, config Config) *PoolCollector {
	config = config.withDefaults()
	name := func(n string) string {
		return prometheus.BuildFQName(config.Namespace, config.Subsystem, n)
	}
	labels := []string{"queue"}

	return &PoolCollector{
		source:    source,
		workers:   prometheus.NewDesc(name("queue_workers"), "Number of workers serving the queue", labels, config.ConstLabels),
		queued:    prometheus.NewDesc(name("queue_depth"), "Number of jobs waiting in the queue", labels, config.ConstLabels),
		running:   prometheus.NewDesc(name("queue_running"), "Number of jobs currently running", labels, config.ConstLabels),
		completed: prometheus.NewDesc(name("queue_completed_total"), "Total number of jobs run by the queue", labels, config.ConstLabels),
	}
}

// RegisterPool creates a PoolCollector for source and registers it with
// config.Registry.
func RegisterPool(source StatsSource, config Config) (*PoolCollector, error) {
	config = config.withDefaults()
	c := NewPoolCollector(source, config)
	if err := config.Registry.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.workers
	ch <- c.queued
	ch <- c.running
	ch <- c.completed
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	for _, q := range c.source.Stats() {
		ch <- prometheus.MustNewConstMetric(c.workers, prometheus.GaugeValue, float64(q.Workers), q.Name)
		ch <- prometheus.MustNewConstMetric(c.queued, prometheus.GaugeValue, float64(q.Queued), q.Name)
		ch <- prometheus.MustNewConstMetric(c.running, prometheus.GaugeValue, float64(q.Running), q.Name)
		ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue, float64(q.Completed), q.Name)
	}
}
