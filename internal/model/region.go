package model

// Column names keying every input table and geometry feature.
const (
	CodeColumn = "LAD24CD"
	NameColumn = "LAD24NM"
)

// NoData is the reserved value meaning "no data for this region/year".
// It is rendered grey on the map and as "No data" everywhere else.
const NoData = 1000.0

// NoDataLabel is the display text for a missing region/year value.
const NoDataLabel = "No data"

// Region identifies a Local Authority District.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Source selects which table feeds the map and hover info.
type Source string

const (
	SourceWater    Source = "water"
	SourceEnergy   Source = "energy"
	SourceCapacity Source = "capacity"
)

// ParseSource maps a user-supplied string to a Source. Unknown values fall
// back to water, which is the map's initial selection.
func ParseSource(s string) Source {
	switch Source(s) {
	case SourceEnergy:
		return SourceEnergy
	case SourceCapacity:
		return SourceCapacity
	default:
		return SourceWater
	}
}

// Title returns the panel heading shown for the source.
func (s Source) Title() string {
	switch s {
	case SourceEnergy:
		return "Energy Supply Forecast"
	case SourceCapacity:
		return "Home Capacity Forecast"
	default:
		return "Water Supply Forecast"
	}
}
