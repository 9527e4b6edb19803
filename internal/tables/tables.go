// Package tables lays the processed tables out as rows of cells for display,
// sorting, paging and export.
package tables

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// DefaultPageSize matches the table view's page size.
const DefaultPageSize = 10

// ErrUnknownTable is returned for a table name other than water, energy or
// capacity.
var ErrUnknownTable = eris.New("tables: unknown table")

// ErrUnknownColumn is returned when sorting by a column the grid lacks.
var ErrUnknownColumn = eris.New("tables: unknown column")

// Grid is a table of cells. A cell is a string, a finite float64 or nil for
// a missing value.
type Grid struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Build lays out one processed table. Water years hold risk labels when the
// table is classified, as do its avg, max and min columns.
func Build(p *model.Processed, name model.Source) (*Grid, error) {
	switch name {
	case model.SourceWater:
		return water(&p.Water), nil
	case model.SourceEnergy:
		return energy(&p.Energy), nil
	case model.SourceCapacity:
		return capacity(&p.Capacity), nil
	default:
		return nil, eris.Wrapf(ErrUnknownTable, "%q", name)
	}
}

// All builds every table in display order.
func All(p *model.Processed) []*Grid {
	return []*Grid{water(&p.Water), energy(&p.Energy), capacity(&p.Capacity)}
}

func header(years []int, extra ...string) []string {
	cols := []string{model.CodeColumn, model.NameColumn}
	for _, y := range years {
		cols = append(cols, strconv.Itoa(y))
	}
	return append(cols, extra...)
}

func water(t *model.WaterTable) *Grid {
	g := &Grid{
		Name:    string(model.SourceWater),
		Columns: header(t.Years, "risk_trend", "risk_change_5yr", "risk_avg", "risk_std", "risk_max", "risk_min"),
	}
	for _, r := range t.Rows {
		row := []any{r.Code, r.Name}
		for _, y := range t.Years {
			if t.Classified {
				if l, ok := r.Levels[y]; ok {
					row = append(row, string(l))
				} else {
					row = append(row, nil)
				}
				continue
			}
			row = append(row, valueCell(r.Row, y))
		}
		s := r.Summary
		if t.Classified {
			row = append(row, string(s.Trend), number(s.Change5yr), label(r.AvgLevel), number(s.Std), label(r.MaxLevel), label(r.MinLevel))
		} else {
			row = append(row, string(s.Trend), number(s.Change5yr), number(s.Avg), number(s.Std), number(s.Max), number(s.Min))
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func energy(t *model.EnergyTable) *Grid {
	g := &Grid{
		Name:    string(model.SourceEnergy),
		Columns: header(t.Years, "homes_trend", "homes_change_5yr", "homes_avg", "homes_std", "homes_max", "homes_min"),
	}
	for _, r := range t.Rows {
		row := []any{r.Code, r.Name}
		for _, y := range t.Years {
			row = append(row, valueCell(r.Row, y))
		}
		s := r.Summary
		row = append(row, string(s.Trend), number(s.Change5yr), number(s.Avg), number(s.Std), number(s.Max), number(s.Min))
		g.Rows = append(g.Rows, row)
	}
	return g
}

func capacity(t *model.Table) *Grid {
	return FromTable(string(model.SourceCapacity), t)
}

// FromTable lays out a plain per-year table with no statistics columns.
func FromTable(name string, t *model.Table) *Grid {
	g := &Grid{Name: name, Columns: header(t.Years)}
	for _, r := range t.Rows {
		row := []any{r.Code, r.Name}
		for _, y := range t.Years {
			row = append(row, valueCell(r, y))
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func valueCell(r model.Row, year int) any {
	v, ok := r.Value(year)
	if !ok {
		return nil
	}
	return number(v)
}

func number(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func label(l model.RiskLevel) any {
	if l == "" {
		return nil
	}
	return string(l)
}

// Sort orders a copy of the grid by column. Missing cells sort last in both
// directions and ties keep source order.
func (g *Grid) Sort(column string, desc bool) (*Grid, error) {
	idx := slices.Index(g.Columns, column)
	if idx < 0 {
		return nil, eris.Wrapf(ErrUnknownColumn, "%q", column)
	}

	out := &Grid{Name: g.Name, Columns: g.Columns, Rows: slices.Clone(g.Rows)}
	slices.SortStableFunc(out.Rows, func(a, b []any) int {
		x, y := a[idx], b[idx]
		switch {
		case x == nil && y == nil:
			return 0
		case x == nil:
			return 1
		case y == nil:
			return -1
		}
		c := compareCells(x, y)
		if desc {
			return -c
		}
		return c
	})
	return out, nil
}

// riskOrder ranks risk labels from worst to best.
var riskOrder = []model.RiskLevel{
	model.RiskHighDeficit,
	model.RiskLowDeficit,
	model.RiskLowCapacity,
	model.RiskHighCapacity,
}

// compareCells orders numbers before strings. Two risk labels compare by
// severity rather than alphabetically.
func compareCells(x, y any) int {
	xf, xNum := x.(float64)
	yf, yNum := y.(float64)
	switch {
	case xNum && yNum:
		return cmp.Compare(xf, yf)
	case xNum:
		return -1
	case yNum:
		return 1
	}
	xs, _ := x.(string)
	ys, _ := y.(string)
	xr := slices.Index(riskOrder, model.RiskLevel(xs))
	yr := slices.Index(riskOrder, model.RiskLevel(ys))
	if xr >= 0 && yr >= 0 {
		return cmp.Compare(xr, yr)
	}
	return cmp.Compare(xs, ys)
}

// Page is one slice of a grid.
type Page struct {
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Pages    int      `json:"pages"`
	Total    int      `json:"total"`
}

// Page returns the 1-based page. Out of range pages are empty. A
// non-positive size uses DefaultPageSize.
func (g *Grid) Page(page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(g.Rows)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	p := Page{
		Name:     g.Name,
		Columns:  g.Columns,
		Rows:     [][]any{},
		Page:     page,
		PageSize: size,
		Pages:    pages,
		Total:    total,
	}
	if page > pages {
		return p
	}
	start := (page - 1) * size
	p.Rows = g.Rows[start : start+min(size, total-start)]
	return p
}
