package pool

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports the counters of named pools as Prometheus gauges. The
// counters are read under each pool's lock, so scrapes may run on any
// goroutine.
type Collector struct {
	mu    sync.RWMutex
	pools map[string]Stats

	active   *prometheus.Desc
	inactive *prometheus.Desc
	total    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector whose metrics live under namespace.
func NewCollector(namespace string) *Collector {
	labels := []string{"pool"}
	return &Collector{
		pools: make(map[string]Stats),
		active: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "active_items"),
			"Number of items currently leased from the pool.",
			labels, nil,
		),
		inactive: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "inactive_items"),
			"Number of items waiting in the free stack.",
			labels, nil,
		),
		total: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "total_items"),
			"Number of items owned by the pool.",
			labels, nil,
		),
	}
}

// Track starts exporting p under name, replacing any pool tracked under the same name.
func (c *Collector) Track(name string, p Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pools[name] = p
}

// Untrack stops exporting the pool tracked under name.
func (c *Collector) Untrack(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pools, name)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.active
	ch <- c.inactive
	ch <- c.total
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.pools))
	for name := range c.pools {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		active, inactive, total := c.pools[name].Snapshot()
		ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(active), name)
		ch <- prometheus.MustNewConstMetric(c.inactive, prometheus.GaugeValue, float64(inactive), name)
		ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(total), name)
	}
}
