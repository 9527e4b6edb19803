package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

func singleRegion(years []int, vals ...float64) *model.Table {
	return &model.Table{Years: years, Rows: []model.Row{rowOf(years, vals...)}}
}

func TestProcess_ClassifiesWater(t *testing.T) {
	years := yearsFrom(2025, 4)
	water := singleRegion(years, -2, -0.5, 0.5, 2)
	energy := singleRegion(years, 1, 2, 3, 4)

	out := Process(water, energy, true)
	require.Len(t, out.Water.Rows, 1)
	row := out.Water.Rows[0]

	assert.True(t, out.Water.Classified)
	assert.Equal(t, map[int]model.RiskLevel{
		2025: model.RiskHighDeficit,
		2026: model.RiskLowDeficit,
		2027: model.RiskLowCapacity,
		2028: model.RiskHighCapacity,
	}, row.Levels)
	assert.Equal(t, model.TrendImproving, row.Summary.Trend)
	assert.Equal(t, 0.0, row.Summary.Change5yr)

	// Stats are computed on raw numbers then reclassified.
	assert.InDelta(t, 0.0, row.Summary.Avg, 1e-9)
	assert.Equal(t, model.RiskLowDeficit, row.AvgLevel)
	assert.Equal(t, model.RiskHighCapacity, row.MaxLevel)
	assert.Equal(t, model.RiskHighDeficit, row.MinLevel)
	assert.Greater(t, row.Summary.Std, 0.0)
}

func TestProcess_NumericWater(t *testing.T) {
	years := yearsFrom(2025, 2)
	out := Process(singleRegion(years, 0.5, 1.5), singleRegion(years, 10, -5), false)

	row := out.Water.Rows[0]
	assert.False(t, out.Water.Classified)
	assert.Nil(t, row.Levels)
	assert.Empty(t, row.AvgLevel)
	assert.Equal(t, 0.5, row.Values[2025])
	assert.Equal(t, 1.5, row.Values[2026])
}

func TestProcess_CapacityFromRawValues(t *testing.T) {
	years := yearsFrom(2025, 2)
	out := Process(singleRegion(years, 0.5, 1.5), singleRegion(years, 10, -5), true)

	require.Len(t, out.Capacity.Rows, 1)
	assert.Equal(t, map[int]float64{2025: 10, 2026: 0}, out.Capacity.Rows[0].Values)
}

func TestProcess_CapacityIdenticalAcrossModes(t *testing.T) {
	years := yearsFrom(2025, 7)
	water := &model.Table{Years: years, Rows: []model.Row{
		rowOf(years, -2, 0, 0.3, 1, 2, -0.2, 5),
		{Region: model.Region{Code: "E07000026", Name: "Allerdale"}, Values: map[int]float64{2025: 4, 2026: 4}},
	}}
	energy := &model.Table{Years: years, Rows: []model.Row{
		rowOf(years, 100, 200, -50, 300, 0, 12, 40),
		{Region: model.Region{Code: "E07000026", Name: "Allerdale"}, Values: map[int]float64{2025: 9, 2027: 3}},
	}}

	classified := Process(water, energy, true)
	numeric := Process(water, energy, false)
	assert.Equal(t, numeric.Capacity, classified.Capacity)
}

func TestProcess_EnergyStatsNumeric(t *testing.T) {
	years := yearsFrom(2025, 6)
	energy := singleRegion(years, 100, 110, 120, 130, 140, 150)
	out := Process(singleRegion(years, 1, 1, 1, 1, 1, 1), energy, true)

	row := out.Energy.Rows[0]
	assert.Equal(t, model.TrendImproving, row.Summary.Trend)
	assert.InDelta(t, 50.0, row.Summary.Change5yr, 1e-9)
	assert.InDelta(t, 125.0, row.Summary.Avg, 1e-9)
	assert.Equal(t, 150.0, row.Summary.Max)
	assert.Equal(t, 100.0, row.Summary.Min)
}

func TestProcess_ThreeYearsHasNoChange(t *testing.T) {
	years := yearsFrom(2025, 3)
	out := Process(singleRegion(years, 1, 2, 3), singleRegion(years, 1, 2, 3), true)
	assert.Equal(t, 0.0, out.Water.Rows[0].Summary.Change5yr)
	assert.Equal(t, 0.0, out.Energy.Rows[0].Summary.Change5yr)
}

func TestProcess_DoesNotMutateInput(t *testing.T) {
	years := yearsFrom(2025, 2)
	water := singleRegion(years, 0.5, -1.5)
	energy := singleRegion(years, 10, 20)

	out := Process(water, energy, true)
	out.Water.Rows[0].Values[2025] = 99

	assert.Equal(t, 0.5, water.Rows[0].Values[2025])
}
