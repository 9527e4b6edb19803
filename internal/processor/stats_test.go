package processor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

func rowOf(years []int, vals ...float64) model.Row {
	r := model.Row{Region: model.Region{Code: "E06000001", Name: "Hartlepool"}, Values: map[int]float64{}}
	for i, v := range vals {
		r.Values[years[i]] = v
	}
	return r
}

func yearsFrom(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   model.Trend
	}{
		{"empty", nil, model.TrendInsufficientData},
		{"single", []float64{4}, model.TrendInsufficientData},
		{"constant", []float64{2, 2, 2, 2}, model.TrendStable},
		{"increasing", []float64{-2, -0.5, 0.5, 2}, model.TrendImproving},
		{"decreasing", []float64{5, 4, 3}, model.TrendDeteriorating},
		{"small rise", []float64{1, 1.05, 1.1}, model.TrendStable},
		{"exactly threshold", []float64{0, 0.1}, model.TrendStable},
		{"order matters", []float64{3, 2, 1}, model.TrendDeteriorating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Trend(tt.series))
		})
	}
}

func TestChange5yr(t *testing.T) {
	t.Run("fewer than six columns", func(t *testing.T) {
		years := yearsFrom(2025, 3)
		got, zero := Change5yr(rowOf(years, 1, 2, 3), years)
		assert.Equal(t, 0.0, got)
		assert.False(t, zero)
	})

	t.Run("uses index five", func(t *testing.T) {
		years := yearsFrom(2025, 8)
		got, zero := Change5yr(rowOf(years, 2, 0, 0, 0, 0, 3, 100, 100), years)
		assert.InDelta(t, 50.0, got, 1e-9)
		assert.False(t, zero)
	})

	t.Run("negative baseline uses absolute value", func(t *testing.T) {
		years := yearsFrom(2025, 6)
		got, _ := Change5yr(rowOf(years, -2, 0, 0, 0, 0, 1), years)
		assert.InDelta(t, 150.0, got, 1e-9)
	})

	t.Run("non-contiguous columns", func(t *testing.T) {
		years := []int{2025, 2030, 2035, 2040, 2045, 2050}
		got, _ := Change5yr(rowOf(years, 4, 0, 0, 0, 0, 2), years)
		assert.InDelta(t, -50.0, got, 1e-9)
	})

	t.Run("zero baseline", func(t *testing.T) {
		years := yearsFrom(2025, 6)
		got, zero := Change5yr(rowOf(years, 0, 1, 1, 1, 1, 5), years)
		assert.True(t, math.IsInf(got, 1))
		assert.True(t, zero)

		got, zero = Change5yr(rowOf(years, 0, 1, 1, 1, 1, 0), years)
		assert.True(t, math.IsNaN(got))
		assert.True(t, zero)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		years := yearsFrom(2025, 6)
		r := rowOf(years, 1, 1, 1, 1, 1, 1)
		delete(r.Values, 2030)
		got, zero := Change5yr(r, years)
		assert.True(t, math.IsNaN(got))
		assert.False(t, zero)
	})
}

func TestDescribe(t *testing.T) {
	avg, std, maxV, minV := Describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, avg, 1e-9)
	assert.InDelta(t, math.Sqrt(32.0/7.0), std, 1e-9)
	assert.Equal(t, 9.0, maxV)
	assert.Equal(t, 2.0, minV)

	avg, std, maxV, minV = Describe([]float64{-3})
	assert.Equal(t, -3.0, avg)
	assert.True(t, math.IsNaN(std))
	assert.Equal(t, -3.0, maxV)
	assert.Equal(t, -3.0, minV)

	avg, std, maxV, minV = Describe(nil)
	for _, v := range []float64{avg, std, maxV, minV} {
		assert.True(t, math.IsNaN(v))
	}
}

func TestSummarize_SkipsAbsentYears(t *testing.T) {
	years := yearsFrom(2025, 4)
	r := rowOf(years, 1, 2, 3, 4)
	delete(r.Values, 2026)

	s, zero := Summarize(r, years)
	assert.False(t, zero)
	assert.Equal(t, model.TrendImproving, s.Trend)
	assert.InDelta(t, 8.0/3.0, s.Avg, 1e-9)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 0.0, s.Change5yr)
}
