package model

import "slices"

// Row is one region's yearly series. A year absent from Values has no data.
type Row struct {
	Region
	Values map[int]float64 `json:"values"`
}

// Value returns the region's reading for year and whether one exists.
func (r Row) Value(year int) (float64, bool) {
	v, ok := r.Values[year]
	return v, ok
}

// Series returns the present values in ascending year order.
func (r Row) Series(years []int) []float64 {
	out := make([]float64, 0, len(years))
	for _, y := range years {
		if v, ok := r.Values[y]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Table is a per-region, per-year numeric table. Years holds the year
// columns in the order they appeared in the source, which is ascending for
// well-formed inputs. Rows keep source order.
type Table struct {
	Years []int `json:"years"`
	Rows  []Row `json:"rows"`
}

// Lookup returns the value for a region code and year.
func (t *Table) Lookup(code string, year int) (float64, bool) {
	row, ok := t.Row(code)
	if !ok {
		return 0, false
	}
	return row.Value(year)
}

// Row returns the row for a region code.
func (t *Table) Row(code string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Code == code {
			return r, true
		}
	}
	return Row{}, false
}

// Index builds a code → row lookup map.
func (t *Table) Index() map[string]Row {
	idx := make(map[string]Row, len(t.Rows))
	for _, r := range t.Rows {
		idx[r.Code] = r
	}
	return idx
}

// YearRange returns the smallest and largest year column. ok is false for a
// table with no year columns.
func (t *Table) YearRange() (minYear, maxYear int, ok bool) {
	if len(t.Years) == 0 {
		return 0, 0, false
	}
	return slices.Min(t.Years), slices.Max(t.Years), true
}

// HasYear reports whether year is one of the table's columns.
func (t *Table) HasYear(year int) bool {
	return slices.Contains(t.Years, year)
}

// SharedYears returns the year columns present in both tables, in a's order.
func SharedYears(a, b *Table) []int {
	var out []int
	for _, y := range a.Years {
		if b.HasYear(y) {
			out = append(out, y)
		}
	}
	return out
}
