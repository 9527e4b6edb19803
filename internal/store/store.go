// Package store persists the processed water, energy and home capacity
// tables in long format, one row per region and year.
package store

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// Table names.
const (
	TableWater    = "water_data"
	TableEnergy   = "energy_data"
	TableCapacity = "home_capacity_data"
	TableStats    = "region_stats"
	TableRegions  = "regions"
)

// ErrUnknownTable is returned when a caller names a table the store does not
// hold yearly values for.
var ErrUnknownTable = eris.New("store: unknown table")

// DataTables lists the yearly tables in load order.
var DataTables = []string{TableWater, TableEnergy, TableCapacity}

// clearedTables are emptied at the start of every load. Regions persist.
var clearedTables = []string{TableWater, TableEnergy, TableCapacity, TableStats}

// schemaTables is the order Schemas reports tables in.
var schemaTables = []string{TableWater, TableEnergy, TableCapacity, TableStats, TableRegions}

var valueColumns = []string{"id", "seq", "code", "name", "year", "value", "label"}

var statsColumns = []string{
	"id", "source", "code", "trend", "change_5yr", "avg", "std",
	"max_value", "min_value", "avg_level", "max_level", "min_level",
}

// Store persists processed tables.
type Store interface {
	// SaveTables clears the previous load and writes every table in one
	// transaction. It returns the number of value rows written per table.
	SaveTables(ctx context.Context, p *model.Processed) (map[string]int64, error)
	// LoadTable reads a yearly table back in source row order.
	LoadTable(ctx context.Context, name string) (*model.Table, error)
	// Schemas describes every table and its columns.
	Schemas(ctx context.Context) (string, error)

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// TableFor maps a map source to its table name.
func TableFor(src model.Source) string {
	switch src {
	case model.SourceEnergy:
		return TableEnergy
	case model.SourceCapacity:
		return TableCapacity
	default:
		return TableWater
	}
}

func checkTable(name string) error {
	if !slices.Contains(DataTables, name) {
		return eris.Wrapf(ErrUnknownTable, "%q", name)
	}
	return nil
}

// snapshot is a processed bundle flattened into insertable rows.
type snapshot struct {
	values  map[string][][]any
	stats   [][]any
	regions [][]any
}

func flatten(p *model.Processed) snapshot {
	s := snapshot{values: make(map[string][][]any, len(DataTables))}
	seen := make(map[string]bool)
	addRegion := func(r model.Region) {
		if seen[r.Code] {
			return
		}
		seen[r.Code] = true
		s.regions = append(s.regions, []any{r.Code, r.Name})
	}

	for i, r := range p.Water.Rows {
		addRegion(r.Region)
		for _, y := range p.Water.Years {
			v, ok := r.Value(y)
			if !ok {
				continue
			}
			label := ""
			if p.Water.Classified {
				label = string(r.Levels[y])
			}
			s.values[TableWater] = append(s.values[TableWater], valueRow(i, r.Region, y, v, label))
		}
		s.stats = append(s.stats, statsRow(TableWater, r.Code, r.Summary, r.AvgLevel, r.MaxLevel, r.MinLevel))
	}

	for i, r := range p.Energy.Rows {
		addRegion(r.Region)
		for _, y := range p.Energy.Years {
			if v, ok := r.Value(y); ok {
				s.values[TableEnergy] = append(s.values[TableEnergy], valueRow(i, r.Region, y, v, ""))
			}
		}
		s.stats = append(s.stats, statsRow(TableEnergy, r.Code, r.Summary, "", "", ""))
	}

	for i, r := range p.Capacity.Rows {
		addRegion(r.Region)
		for _, y := range p.Capacity.Years {
			if v, ok := r.Value(y); ok {
				s.values[TableCapacity] = append(s.values[TableCapacity], valueRow(i, r.Region, y, v, ""))
			}
		}
	}
	return s
}

func valueRow(seq int, r model.Region, year int, v float64, label string) []any {
	return []any{uuid.NewString(), seq, r.Code, r.Name, year, finite(v), label}
}

func statsRow(source, code string, s model.Summary, avg, maxL, minL model.RiskLevel) []any {
	return []any{
		uuid.NewString(), source, code, string(s.Trend),
		finite(s.Change5yr), finite(s.Avg), finite(s.Std), finite(s.Max), finite(s.Min),
		string(avg), string(maxL), string(minL),
	}
}

// finite maps NaN and ±Inf to SQL NULL.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// tableBuilder reassembles long-format rows ordered by (seq, year).
type tableBuilder struct {
	t     model.Table
	years map[int]bool
	last  int
}

func newTableBuilder() *tableBuilder {
	return &tableBuilder{years: make(map[int]bool), last: -1}
}

func (b *tableBuilder) add(seq int, code, name string, year int, value *float64) {
	if seq != b.last || len(b.t.Rows) == 0 {
		b.t.Rows = append(b.t.Rows, model.Row{
			Region: model.Region{Code: code, Name: name},
			Values: make(map[int]float64),
		})
		b.last = seq
	}
	b.years[year] = true
	if value != nil {
		b.t.Rows[len(b.t.Rows)-1].Values[year] = *value
	}
}

func (b *tableBuilder) table() *model.Table {
	for y := range b.years {
		b.t.Years = append(b.t.Years, y)
	}
	slices.Sort(b.t.Years)
	return &b.t
}

type column struct {
	name string
	typ  string
}

// formatSchemas renders "\n<table>:\n  <col> (<type>)\n" blocks.
func formatSchemas(tables []string, cols map[string][]column) string {
	var b strings.Builder
	for _, t := range tables {
		fmt.Fprintf(&b, "\n%s:\n", t)
		for _, c := range cols[t] {
			fmt.Fprintf(&b, "  %s (%s)\n", c.name, c.typ)
		}
	}
	return b.String()
}
