// Package dataset loads the raw per-region, per-year forecast tables from
// CSV or XLSX into model tables.
package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/home-capacity-viewer/internal/fetcher"
	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// Sentinel errors for malformed tables.
var (
	ErrMissingKeyColumns = eris.New("dataset: missing LAD24CD/LAD24NM columns")
	ErrBadYearColumn     = eris.New("dataset: column is not a year")
)

// yearPrefix is accepted on year headers so stored exports load back.
const yearPrefix = "year_"

// Load reads a table from path. The format is chosen by extension: .xlsx
// reads the first sheet, anything else is parsed as CSV.
func Load(ctx context.Context, path string) (*model.Table, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		rows, err = fetcher.CollectCSV(ctx, f, fetcher.CSVOptions{TrimSpace: true})
	}
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}

	t, err := Parse(rows)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", path)
	}
	zap.L().Info("dataset: table loaded",
		zap.String("path", path),
		zap.Int("regions", len(t.Rows)),
		zap.Int("years", len(t.Years)),
	)
	return t, nil
}

// Parse builds a table from rows whose first row is the header. The header
// must carry LAD24CD and LAD24NM; every other column must be a year. Empty
// cells are absent values. Duplicate region codes keep the first row.
func Parse(rows [][]string) (*model.Table, error) {
	if len(rows) == 0 {
		return nil, ErrMissingKeyColumns
	}
	header := rows[0]

	codeIdx, nameIdx := -1, -1
	yearCols := map[int]int{}
	var years []int
	for i, h := range header {
		h = strings.TrimSpace(h)
		switch h {
		case model.CodeColumn:
			codeIdx = i
			continue
		case model.NameColumn:
			nameIdx = i
			continue
		case "":
			continue
		}
		y, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(h), yearPrefix))
		if err != nil {
			return nil, eris.Wrapf(ErrBadYearColumn, "column %q", h)
		}
		yearCols[i] = y
		years = append(years, y)
	}
	if codeIdx < 0 || nameIdx < 0 {
		return nil, ErrMissingKeyColumns
	}

	t := &model.Table{Years: years}
	seen := make(map[string]bool, len(rows))
	for n, rec := range rows[1:] {
		code := cell(rec, codeIdx)
		if code == "" {
			continue
		}
		if seen[code] {
			zap.L().Warn("dataset: duplicate region code, keeping first", zap.String("region", code))
			continue
		}
		seen[code] = true

		row := model.Row{
			Region: model.Region{Code: code, Name: cell(rec, nameIdx)},
			Values: make(map[int]float64, len(years)),
		}
		for col, y := range yearCols {
			raw := cell(rec, col)
			if raw == "" || strings.EqualFold(raw, "nan") {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "row %d (%s) year %d", n+2, code, y)
			}
			row.Values[y] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
