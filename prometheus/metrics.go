// Package prometheus implements crawl metrics backed by Prometheus
// collectors.
package prometheus

import (
	"time"

	"github.com/fwojciec/adscan"
	"github.com/prometheus/client_golang/prometheus"
)

// Ensure Collector implements adscan.Metrics at compile time.
var _ adscan.Metrics = (*Collector)(nil)

// Collector records crawl observations as Prometheus metrics.
type Collector struct {
	tasksTotal     *prometheus.CounterVec
	taskDuration   *prometheus.HistogramVec
	blockedDomains prometheus.Gauge
	cacheEntries   prometheus.Gauge
	cacheBytes     prometheus.Gauge
	cacheHitRate   prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adscan_tasks_total",
			Help: "Total number of completed page tasks.",
		}, []string{"status", "code"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adscan_task_duration_seconds",
			Help:    "Duration of page tasks.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		}, []string{"status"}),
		blockedDomains: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adscan_blocked_domains",
			Help: "Current number of domains in the blocked circuit state.",
		}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adscan_cache_entries",
			Help: "Current number of content cache entries.",
		}),
		cacheBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adscan_cache_bytes",
			Help: "Current content cache size in bytes.",
		}),
		cacheHitRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adscan_cache_hit_rate",
			Help: "Fraction of cache lookups served from cache.",
		}),
	}
	reg.MustRegister(
		c.tasksTotal,
		c.taskDuration,
		c.blockedDomains,
		c.cacheEntries,
		c.cacheBytes,
		c.cacheHitRate,
	)
	return c
}

// ObserveTask records a completed task with its outcome and duration.
func (c *Collector) ObserveTask(status adscan.TaskStatus, code string, d time.Duration) {
	c.tasksTotal.WithLabelValues(string(status), code).Inc()
	c.taskDuration.WithLabelValues(string(status)).Observe(d.Seconds())
}

// SetBlockedDomains records the current number of blocked domains.
func (c *Collector) SetBlockedDomains(n int) {
	c.blockedDomains.Set(float64(n))
}

// ObserveCache records cache occupancy and hit rate.
func (c *Collector) ObserveCache(stats adscan.CacheStats) {
	c.cacheEntries.Set(float64(stats.Entries))
	c.cacheBytes.Set(float64(stats.SizeBytes))
	c.cacheHitRate.Set(stats.HitRate())
}
