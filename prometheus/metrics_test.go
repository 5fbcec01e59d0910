package prometheus_test

import (
	"testing"
	"time"

	"github.com/fwojciec/adscan"
	adscanprom "github.com/fwojciec/adscan/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveTask_counts_by_status_and_code(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := adscanprom.NewCollector(reg)

	c.ObserveTask(adscan.StatusSuccess, "", 2*time.Second)
	c.ObserveTask(adscan.StatusSuccess, "", time.Second)
	c.ObserveTask(adscan.StatusError, adscan.CodeNavigationTimeout, 30*time.Second)

	counts := gatherCounters(t, reg, "adscan_tasks_total")
	assert.Equal(t, float64(2), counts["success|"])
	assert.Equal(t, float64(1), counts["error|"+adscan.CodeNavigationTimeout])
}

func TestCollector_SetBlockedDomains(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := adscanprom.NewCollector(reg)

	c.SetBlockedDomains(7)

	assert.Equal(t, float64(7), gatherGauge(t, reg, "adscan_blocked_domains"))
}

func TestCollector_ObserveCache(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := adscanprom.NewCollector(reg)

	c.ObserveCache(adscan.CacheStats{
		Entries:   10,
		SizeBytes: 4096,
		Hits:      3,
		Misses:    1,
	})

	assert.Equal(t, float64(10), gatherGauge(t, reg, "adscan_cache_entries"))
	assert.Equal(t, float64(4096), gatherGauge(t, reg, "adscan_cache_bytes"))
	assert.Equal(t, 0.75, gatherGauge(t, reg, "adscan_cache_hit_rate"))
}

// gatherCounters returns counter values keyed by "status|code".
func gatherCounters(t *testing.T, reg *prometheus.Registry, name string) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	counts := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			counts[labels["status"]+"|"+labels["code"]] = m.GetCounter().GetValue()
		}
	}
	return counts
}

func gatherGauge(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
