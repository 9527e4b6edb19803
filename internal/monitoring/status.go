package monitoring

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// Snapshot is a point-in-time view of the loaded dataset.
type Snapshot struct {
	WaterRegions    int       `json:"water_regions"`
	EnergyRegions   int       `json:"energy_regions"`
	CapacityRegions int       `json:"capacity_regions"`
	Features        int       `json:"features"`
	MinYear         int       `json:"min_year"`
	MaxYear         int       `json:"max_year"`
	Classified      bool      `json:"classified"`
	LoadedAt        time.Time `json:"loaded_at"`
	UptimeSeconds   float64   `json:"uptime_seconds"`
	CollectedAt     time.Time `json:"collected_at"`
}

// Collector reports on the dataset built at startup.
type Collector struct {
	processed *model.Processed
	features  int
	loadedAt  time.Time
	clock     clockwork.Clock
}

// NewCollector creates a collector for a processed dataset loaded at
// loadedAt with the given number of map features.
func NewCollector(p *model.Processed, features int, loadedAt time.Time, clock clockwork.Clock) *Collector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Collector{processed: p, features: features, loadedAt: loadedAt, clock: clock}
}

// Collect returns the current snapshot.
func (c *Collector) Collect() Snapshot {
	now := c.clock.Now().UTC()
	snap := Snapshot{
		WaterRegions:    len(c.processed.Water.Rows),
		EnergyRegions:   len(c.processed.Energy.Rows),
		CapacityRegions: len(c.processed.Capacity.Rows),
		Features:        c.features,
		Classified:      c.processed.Water.Classified,
		LoadedAt:        c.loadedAt.UTC(),
		UptimeSeconds:   now.Sub(c.loadedAt).Seconds(),
		CollectedAt:     now,
	}
	water := model.Table{Years: c.processed.Water.Years}
	if lo, hi, ok := water.YearRange(); ok {
		snap.MinYear, snap.MaxYear = lo, hi
	}
	return snap
}
