package scene

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports scene statistics as Prometheus metrics. It reads the
// scene on scrape, so it must be gathered on the goroutine that drives the
// scene, typically right after Scheduler.Once.
type Collector struct {
	scene *Scene

	entities     *prometheus.Desc
	registrySize *prometheus.Desc
	propagations *prometheus.Desc
	sweeps       *prometheus.Desc
	freed        *prometheus.Desc
}

func NewCollector(s *Scene) *Collector {
	return &Collector{
		scene: s,
		entities: prometheus.NewDesc(
			"scenic_entities",
			"Number of entities attached to the scene, root included.",
			nil, nil),
		registrySize: prometheus.NewDesc(
			"scenic_registry_entries",
			"Number of entities indexed by a capability registry.",
			[]string{"registry"}, nil),
		propagations: prometheus.NewDesc(
			"scenic_propagations_total",
			"Local transform changes propagated through the tree.",
			nil, nil),
		sweeps: prometheus.NewDesc(
			"scenic_sweeps_total",
			"Sweeps that freed at least one entity.",
			nil, nil),
		freed: prometheus.NewDesc(
			"scenic_freed_entities_total",
			"Entities freed by sweeps.",
			nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entities
	ch <- c.registrySize
	ch <- c.propagations
	ch <- c.sweeps
	ch <- c.freed
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.scene.Stats()
	ch <- prometheus.MustNewConstMetric(c.entities, prometheus.GaugeValue, float64(stats.Entities))
	for _, h := range c.scene.handlers {
		c.collectHandler(ch, h)
	}
	ch <- prometheus.MustNewConstMetric(c.propagations, prometheus.CounterValue, float64(stats.Propagations))
	ch <- prometheus.MustNewConstMetric(c.sweeps, prometheus.CounterValue, float64(stats.Sweeps))
	ch <- prometheus.MustNewConstMetric(c.freed, prometheus.CounterValue, float64(stats.Freed))
}

type subHandler interface {
	Subs() []Handler
}

func (c *Collector) collectHandler(ch chan<- prometheus.Metric, h Handler) {
	ch <- prometheus.MustNewConstMetric(c.registrySize, prometheus.GaugeValue, float64(h.Len()), h.Name())
	if parent, ok := h.(subHandler); ok {
		for _, sub := range parent.Subs() {
			c.collectHandler(ch, sub)
		}
	}
}
