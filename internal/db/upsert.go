package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig describes a multi-row INSERT ... ON CONFLICT DO UPDATE.
type UpsertConfig struct {
	Table        string
	Columns      []string
	ConflictKeys []string
	UpdateCols   []string // nil means every non-key column
}

// UpsertSQL builds the statement for n rows with positional parameters.
func UpsertSQL(cfg UpsertConfig, n int) (string, error) {
	if len(cfg.Columns) == 0 {
		return "", eris.New("db: upsert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return "", eris.New("db: upsert: no conflict keys specified")
	}

	updateCols := cfg.UpdateCols
	if updateCols == nil {
		keys := make(map[string]bool, len(cfg.ConflictKeys))
		for _, k := range cfg.ConflictKeys {
			keys[k] = true
		}
		for _, c := range cfg.Columns {
			if !keys[c] {
				updateCols = append(updateCols, c)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", pgx.Identifier{cfg.Table}.Sanitize(), quoteAndJoin(cfg.Columns))
	param := 1
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range cfg.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", param)
			param++
		}
		b.WriteByte(')')
	}
	fmt.Fprintf(&b, " ON CONFLICT (%s)", quoteAndJoin(cfg.ConflictKeys))

	if len(updateCols) == 0 {
		b.WriteString(" DO NOTHING")
		return b.String(), nil
	}
	set := make([]string, len(updateCols))
	for i, c := range updateCols {
		id := pgx.Identifier{c}.Sanitize()
		set[i] = id + " = EXCLUDED." + id
	}
	b.WriteString(" DO UPDATE SET ")
	b.WriteString(strings.Join(set, ", "))
	return b.String(), nil
}

// BulkUpsert writes rows in a single statement and returns the rows affected.
func BulkUpsert(ctx context.Context, e Execer, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	sql, err := UpsertSQL(cfg, len(rows))
	if err != nil {
		return 0, err
	}

	args := make([]any, 0, len(rows)*len(cfg.Columns))
	for i, r := range rows {
		if len(r) != len(cfg.Columns) {
			return 0, eris.Errorf("db: upsert: row %d has %d values, want %d", i, len(r), len(cfg.Columns))
		}
		args = append(args, r...)
	}

	tag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert into %s", cfg.Table)
	}
	return tag.RowsAffected(), nil
}

func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
