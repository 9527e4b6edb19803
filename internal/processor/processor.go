// Package processor derives the risk, trend, statistics and home capacity
// tables from the raw water and energy forecasts.
package processor

import (
	"slices"

	"go.uber.org/zap"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// Process builds the three finalized tables from the raw inputs. Home
// capacity is derived from the raw water values before any classification,
// so the capacity table is identical in both modes. classifyWater selects
// the risk-label rendering of the water table. Inputs are not modified.
func Process(water, energy *model.Table, classifyWater bool) *model.Processed {
	capacity := DeriveCapacity(water, energy)

	out := &model.Processed{
		Water:    processWater(water, classifyWater),
		Energy:   processEnergy(energy),
		Capacity: *capacity,
	}

	zap.L().Info("processor: tables built",
		zap.Int("water_regions", len(out.Water.Rows)),
		zap.Int("energy_regions", len(out.Energy.Rows)),
		zap.Int("capacity_regions", len(out.Capacity.Rows)),
		zap.Int("capacity_years", len(out.Capacity.Years)),
		zap.Bool("classified", classifyWater),
	)
	return out
}

func processWater(raw *model.Table, classify bool) model.WaterTable {
	out := model.WaterTable{
		Years:      slices.Clone(raw.Years),
		Classified: classify,
		Rows:       make([]model.WaterRow, 0, len(raw.Rows)),
	}
	for _, r := range raw.Rows {
		summary, zeroBase := Summarize(r, raw.Years)
		if zeroBase {
			warnZeroBase("water", r.Region)
		}
		row := model.WaterRow{Row: cloneRow(r), Summary: summary}
		if classify {
			row.Levels = make(map[int]model.RiskLevel, len(r.Values))
			for y, v := range r.Values {
				row.Levels[y] = ClassifyRisk(v)
			}
			row.AvgLevel = ClassifyRisk(summary.Avg)
			row.MaxLevel = ClassifyRisk(summary.Max)
			row.MinLevel = ClassifyRisk(summary.Min)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func processEnergy(raw *model.Table) model.EnergyTable {
	out := model.EnergyTable{
		Years: slices.Clone(raw.Years),
		Rows:  make([]model.EnergyRow, 0, len(raw.Rows)),
	}
	for _, r := range raw.Rows {
		summary, zeroBase := Summarize(r, raw.Years)
		if zeroBase {
			warnZeroBase("energy", r.Region)
		}
		out.Rows = append(out.Rows, model.EnergyRow{Row: cloneRow(r), Summary: summary})
	}
	return out
}

func warnZeroBase(table string, r model.Region) {
	zap.L().Warn("processor: 5-year change has a zero baseline",
		zap.String("table", table),
		zap.String("region", r.Code),
		zap.String("name", r.Name),
	)
}
