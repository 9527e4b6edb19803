package processor

import (
	"math"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// trendThreshold is the absolute mean step beyond which a series counts as
// moving. It does not scale with the data.
const trendThreshold = 0.1

// changeSpan is the column offset used for the percentage change figure.
const changeSpan = 5

// Trend returns the direction of an ordered series from the mean of its
// consecutive differences. The series is not sorted.
func Trend(series []float64) model.Trend {
	if len(series) < 2 {
		return model.TrendInsufficientData
	}
	var sum float64
	for i := 1; i < len(series); i++ {
		sum += series[i] - series[i-1]
	}
	avg := sum / float64(len(series)-1)
	switch {
	case avg > trendThreshold:
		return model.TrendImproving
	case avg < -trendThreshold:
		return model.TrendDeteriorating
	default:
		return model.TrendStable
	}
}

// Change5yr returns the percentage change between the first year column and
// the column at index 5 of years. Fewer than six columns yields 0. A missing
// endpoint yields NaN. A zero baseline is not guarded: the result is ±Inf, or
// NaN when both endpoints are zero, and zeroBase is set so callers can report it.
func Change5yr(row model.Row, years []int) (change float64, zeroBase bool) {
	if len(years) < changeSpan+1 {
		return 0, false
	}
	start, okStart := row.Value(years[0])
	end, okEnd := row.Value(years[changeSpan])
	if !okStart || !okEnd {
		return math.NaN(), false
	}
	return (end - start) / math.Abs(start) * 100, start == 0
}

// Describe computes mean, sample standard deviation, max and min. Every
// field is NaN for an empty series; Std is NaN for a single value.
func Describe(series []float64) (avg, std, maxV, minV float64) {
	n := len(series)
	if n == 0 {
		nan := math.NaN()
		return nan, nan, nan, nan
	}
	maxV, minV = series[0], series[0]
	var sum float64
	for _, v := range series {
		sum += v
		maxV = math.Max(maxV, v)
		minV = math.Min(minV, v)
	}
	avg = sum / float64(n)
	if n < 2 {
		return avg, math.NaN(), maxV, minV
	}
	var sq float64
	for _, v := range series {
		d := v - avg
		sq += d * d
	}
	std = math.Sqrt(sq / float64(n-1))
	return avg, std, maxV, minV
}

// Summarize builds the trend and statistics for one row. Values are read in
// the order of years; absent years are skipped.
func Summarize(row model.Row, years []int) (model.Summary, bool) {
	series := row.Series(years)
	change, zeroBase := Change5yr(row, years)
	avg, std, maxV, minV := Describe(series)
	return model.Summary{
		Trend:     Trend(series),
		Change5yr: change,
		Avg:       avg,
		Std:       std,
		Max:       maxV,
		Min:       minV,
	}, zeroBase
}
