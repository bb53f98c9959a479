// Package monitoring watches generator spend and availability and posts
// alerts to a webhook.
package monitoring

import (
	"sort"
	"time"

	"github.com/sells-group/importer-intel/internal/cost"
	"github.com/sells-group/importer-intel/internal/resilience"
)

// MetricsSnapshot holds a point-in-time view of generator health.
type MetricsSnapshot struct {
	SpendUSD     float64      `json:"spend_usd"`
	Calls        int          `json:"calls"`
	Backends     []cost.Spend `json:"backends"`
	OpenBreakers []string     `json:"open_breakers,omitempty"`
	CollectedAt  time.Time    `json:"collected_at"`
}

// Source is what the collector reads. The generator router implements it.
type Source interface {
	Spend() []cost.Spend
	BreakerStates() map[string]resilience.CircuitState
}

// Collector gathers metrics from a Source.
type Collector struct {
	src Source
	now func() time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector(src Source) *Collector {
	return &Collector{src: src, now: time.Now}
}

// Collect gathers a snapshot.
func (c *Collector) Collect() *MetricsSnapshot {
	snap := &MetricsSnapshot{
		Backends:    c.src.Spend(),
		CollectedAt: c.now().UTC(),
	}
	for _, s := range snap.Backends {
		snap.SpendUSD += s.USD
		snap.Calls += s.Calls
	}
	for name, state := range c.src.BreakerStates() {
		if state == resilience.CircuitOpen {
			snap.OpenBreakers = append(snap.OpenBreakers, name)
		}
	}
	sort.Strings(snap.OpenBreakers)
	return snap
}
