// Package llmcontext renders the processed tables as compact per-region text
// blocks and assembles the system prompt that grounds LLM answers.
package llmcontext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/home-capacity-viewer/internal/model"
	"github.com/sells-group/home-capacity-viewer/internal/processor"
)

// Placeholders used when a table yields no region blocks.
const (
	NoWaterData    = "No water risk data available."
	NoEnergyData   = "No new homes data available."
	NoCapacityData = "No home capacity data available."
)

const blockSep = "\n\n"

// Context holds the rendered block text for each processed table.
type Context struct {
	Water    string
	Energy   string
	Capacity string
}

// Build renders all three tables.
func Build(p *model.Processed) Context {
	return Context{
		Water:    FormatWater(&p.Water),
		Energy:   FormatEnergy(&p.Energy),
		Capacity: FormatCapacity(&p.Capacity),
	}
}

// FormatWater renders one block per region of the water table. In
// classified mode years show risk labels; otherwise raw values.
func FormatWater(t *model.WaterTable) string {
	var blocks []string
	for _, r := range t.Rows {
		var pairs []string
		for _, y := range t.Years {
			v, ok := r.Value(y)
			if !ok || v == model.NoData {
				continue
			}
			if t.Classified {
				pairs = append(pairs, fmt.Sprintf("%d: %s", y, r.Levels[y]))
			} else {
				pairs = append(pairs, fmt.Sprintf("%d: %s", y, number(v)))
			}
		}
		if len(pairs) == 0 {
			continue
		}

		avg, lo, hi := number(r.Summary.Avg), number(r.Summary.Min), number(r.Summary.Max)
		if t.Classified {
			avg, lo, hi = string(r.AvgLevel), string(r.MinLevel), string(r.MaxLevel)
		}
		blocks = append(blocks, fmt.Sprintf(
			"%s:\n  Risk Levels: %s\n  Trend: %s\n  5-year change: %.1f%%\n  Average Risk: %s\n  Risk Range: %s to %s",
			r.Name, strings.Join(pairs, " | "), r.Summary.Trend, r.Summary.Change5yr, avg, lo, hi,
		))
	}
	return joinOr(blocks, NoWaterData)
}

// FormatEnergy renders one block per region of the energy table, with values
// read as potential new homes.
func FormatEnergy(t *model.EnergyTable) string {
	var blocks []string
	for _, r := range t.Rows {
		pairs := homesPairs(r.Row, t.Years)
		if len(pairs) == 0 {
			continue
		}
		blocks = append(blocks, homesBlock(r.Name, "Potential New Homes", pairs, r.Summary))
	}
	return joinOr(blocks, NoEnergyData)
}

// FormatCapacity renders one block per region of the derived capacity table.
// Trend and statistics are computed here since the table carries none.
func FormatCapacity(t *model.Table) string {
	var blocks []string
	for _, r := range t.Rows {
		pairs := homesPairs(r, t.Years)
		if len(pairs) == 0 {
			continue
		}
		summary, _ := processor.Summarize(r, t.Years)
		blocks = append(blocks, homesBlock(r.Name, "Home Capacity", pairs, summary))
	}
	return joinOr(blocks, NoCapacityData)
}

func homesPairs(r model.Row, years []int) []string {
	var pairs []string
	for _, y := range years {
		v, ok := r.Value(y)
		if !ok || v == model.NoData {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("%d: %.0f homes", y, v))
	}
	return pairs
}

func homesBlock(name, heading string, pairs []string, s model.Summary) string {
	return fmt.Sprintf(
		"%s:\n  %s: %s\n  Trend: %s\n  5-year change: %.1f%%\n  Average: %.0f homes\n  Range: %.0f to %.0f homes",
		name, heading, strings.Join(pairs, " | "), s.Trend, s.Change5yr, s.Avg, s.Min, s.Max,
	)
}

func joinOr(blocks []string, placeholder string) string {
	if len(blocks) == 0 {
		return placeholder
	}
	return strings.Join(blocks, blockSep)
}

// number renders a raw reading with the shortest exact representation.
func number(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
