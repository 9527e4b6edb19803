// Package choropleth computes the per-year class breakpoints, colors and
// legend used to shade the region map, and classifies values into colors.
package choropleth

import (
	"fmt"
	"math"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// ErrNoValues is returned when a selection has no region with data.
var ErrNoValues = eris.New("choropleth: no values to classify")

// Palette. Reds shade deficits, greens shade surpluses and grey marks
// missing data. The first green is dropped so zero is not drawn twice.
var (
	negativeColors = []string{"#8B2E23", "#C05746", "#E8998D"}
	positiveColors = []string{"#9DC08B", "#609966", "#315C2B", "#254D20", "#1A3D15"}
)

// MissingColor is the fill for regions without data.
const MissingColor = "#A9A9A9"

// negativeClasses is the number of leading breakpoints on the deficit side.
const negativeClasses = 3

// Colors returns the full color list in class order, missing-data grey last.
func Colors() []string {
	out := slices.Clone(negativeColors)
	out = append(out, positiveColors[1:]...)
	return append(out, MissingColor)
}

// LegendEntry is one swatch of the map's color bar.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// State is the classification for one year and source. It is a value: each
// map refresh builds its own.
type State struct {
	Min        float64       `json:"min"`
	Max        float64       `json:"max"`
	Classes    []float64     `json:"classes"`
	Colors     []string      `json:"colors"`
	Categories []string      `json:"categories"`
	Legend     []LegendEntry `json:"legend"`
}

// Recompute derives breakpoints and legend from one year's region values.
// NoData entries and non-finite values are excluded from the range.
func Recompute(values []float64) (State, error) {
	minV, maxV := math.Inf(1), math.Inf(-1)
	var n int
	for _, v := range values {
		if v == model.NoData || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
		n++
	}
	if n == 0 {
		return State{}, ErrNoValues
	}

	neg := []float64{minV, minV / 2, 0}
	pos := []float64{0, maxV / 4, maxV / 2, maxV * 0.75, maxV}

	classes := slices.Clone(neg)
	classes = append(classes, pos[1:]...)
	classes = append(classes, model.NoData)

	categories := make([]string, 0, len(neg)+len(pos)-1)
	for i := 0; i < len(neg)-1; i++ {
		categories = append(categories, fmt.Sprintf("%.1f to %.1f", neg[i], neg[i+1]))
	}
	for i := 0; i < len(pos)-1; i++ {
		if i == len(pos)-2 {
			categories = append(categories, fmt.Sprintf("%.1f+", pos[i]))
			continue
		}
		categories = append(categories, fmt.Sprintf("%.1f to %.1f", pos[i], pos[i+1]))
	}
	categories = append(categories, model.NoDataLabel)

	colors := Colors()

	// The lowest red only ever shades the minimum itself, so the legend
	// pairs each range label with the color that fills that range.
	legend := make([]LegendEntry, len(categories))
	for i, c := range categories {
		legend[i] = LegendEntry{Label: c, Color: colors[i+1]}
	}

	return State{
		Min:        minV,
		Max:        maxV,
		Classes:    classes,
		Colors:     colors,
		Categories: categories,
		Legend:     legend,
	}, nil
}

// Classify returns the fill color for v. The NoData sentinel maps to the
// missing color. Values above the top breakpoint clamp to the darkest green
// rather than falling through to grey.
func (s State) Classify(v float64) string {
	last := len(s.Classes) - 1
	if v == model.NoData || math.IsNaN(v) {
		return s.Colors[last]
	}
	if v < 0 {
		for i := 0; i < negativeClasses; i++ {
			if v <= s.Classes[i] {
				return s.Colors[i]
			}
		}
		return s.Colors[negativeClasses-1]
	}
	for i := negativeClasses; i < last; i++ {
		if v <= s.Classes[i] {
			return s.Colors[i]
		}
	}
	return s.Colors[last-1]
}
