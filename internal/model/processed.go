package model

// RiskLevel is the ordinal water-capacity category of a value.
type RiskLevel string

const (
	RiskHighCapacity RiskLevel = "High capacity"
	RiskLowCapacity  RiskLevel = "Low capacity"
	RiskLowDeficit   RiskLevel = "Low risk deficit"
	RiskHighDeficit  RiskLevel = "High risk deficit"
)

// Trend is the direction of a yearly series.
type Trend string

const (
	TrendImproving        Trend = "improving"
	TrendDeteriorating    Trend = "deteriorating"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient data"
)

// Summary holds the trend and statistics of one region's series, computed on
// raw numeric values.
type Summary struct {
	Trend     Trend   `json:"trend"`
	Change5yr float64 `json:"change_5yr"`
	Avg       float64 `json:"avg"`
	Std       float64 `json:"std"`
	Max       float64 `json:"max"`
	Min       float64 `json:"min"`
}

// WaterRow is one region of the processed water table. Levels, AvgLevel,
// MaxLevel and MinLevel are only set when the table is classified.
type WaterRow struct {
	Row
	Levels   map[int]RiskLevel `json:"levels,omitempty"`
	Summary  Summary           `json:"summary"`
	AvgLevel RiskLevel         `json:"avg_level,omitempty"`
	MaxLevel RiskLevel         `json:"max_level,omitempty"`
	MinLevel RiskLevel         `json:"min_level,omitempty"`
}

// WaterTable is the processed water table. Classified selects between the
// numeric rendering and the risk-label rendering of every year and of the
// avg/max/min statistics.
type WaterTable struct {
	Years      []int      `json:"years"`
	Classified bool       `json:"classified"`
	Rows       []WaterRow `json:"rows"`
}

// EnergyRow is one region of the processed energy table.
type EnergyRow struct {
	Row
	Summary Summary `json:"summary"`
}

// EnergyTable is the processed energy table. Values stay numeric.
type EnergyTable struct {
	Years []int       `json:"years"`
	Rows  []EnergyRow `json:"rows"`
}

// Processed bundles the three finalized tables. It is built once and shared
// read-only for the rest of the process lifetime.
type Processed struct {
	Water    WaterTable  `json:"water"`
	Energy   EnergyTable `json:"energy"`
	Capacity Table       `json:"capacity"`
}
