package processor

import (
	"maps"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// HomeCapacity returns the number of new homes a region-year supports: the
// energy surplus, gated on a positive water reading.
func HomeCapacity(water, energy float64) float64 {
	if water <= 0 || energy <= 0 {
		return 0
	}
	return energy
}

// DeriveCapacity combines raw water and raw energy tables into the home
// capacity table. Only regions present in both tables and only years present
// in both tables are combined. A missing reading on either side counts as no
// capacity. Inputs must be the raw numeric tables.
func DeriveCapacity(water, energy *model.Table) *model.Table {
	years := model.SharedYears(water, energy)
	energyIdx := energy.Index()

	out := &model.Table{Years: years, Rows: make([]model.Row, 0, len(water.Rows))}
	for _, w := range water.Rows {
		e, ok := energyIdx[w.Code]
		if !ok {
			continue
		}
		values := make(map[int]float64, len(years))
		for _, y := range years {
			wv, okW := w.Value(y)
			ev, okE := e.Value(y)
			if !okW || !okE {
				values[y] = 0
				continue
			}
			values[y] = HomeCapacity(wv, ev)
		}
		out.Rows = append(out.Rows, model.Row{Region: w.Region, Values: values})
	}
	return out
}

// cloneRow copies a row so processed tables never alias raw input maps.
func cloneRow(r model.Row) model.Row {
	return model.Row{Region: r.Region, Values: maps.Clone(r.Values)}
}
