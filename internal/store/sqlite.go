package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func sqliteValueTable(name string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id    TEXT PRIMARY KEY,
	seq   INTEGER NOT NULL,
	code  TEXT NOT NULL,
	name  TEXT NOT NULL,
	year  INTEGER NOT NULL,
	value REAL,
	label TEXT NOT NULL DEFAULT '',
	UNIQUE (code, year)
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_year ON %[1]s(year);
`, name)
}

var sqliteMigration = sqliteValueTable(TableWater) +
	sqliteValueTable(TableEnergy) +
	sqliteValueTable(TableCapacity) + `
CREATE TABLE IF NOT EXISTS region_stats (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	code       TEXT NOT NULL,
	trend      TEXT NOT NULL,
	change_5yr REAL,
	avg        REAL,
	std        REAL,
	max_value  REAL,
	min_value  REAL,
	avg_level  TEXT NOT NULL DEFAULT '',
	max_level  TEXT NOT NULL DEFAULT '',
	min_level  TEXT NOT NULL DEFAULT '',
	UNIQUE (source, code)
);

CREATE TABLE IF NOT EXISTS regions (
	code       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveTables(ctx context.Context, p *model.Processed) (map[string]int64, error) {
	snap := flatten(p)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin load")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, t := range clearedTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return nil, eris.Wrapf(err, "sqlite: clear %s", t)
		}
	}

	counts := make(map[string]int64, len(DataTables))
	for _, t := range DataTables {
		n, err := insertRows(ctx, tx, t, valueColumns, snap.values[t])
		if err != nil {
			return nil, err
		}
		counts[t] = n
	}
	if _, err := insertRows(ctx, tx, TableStats, statsColumns, snap.stats); err != nil {
		return nil, err
	}

	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO regions (code, name, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT (code) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare region upsert")
	}
	defer upsert.Close() //nolint:errcheck
	for _, r := range snap.regions {
		if _, err := upsert.ExecContext(ctx, r...); err != nil {
			return nil, eris.Wrapf(err, "sqlite: upsert region %v", r[0])
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit load")
	}

	zap.L().Info("sqlite: tables saved",
		zap.Int64(TableWater, counts[TableWater]),
		zap.Int64(TableEnergy, counts[TableEnergy]),
		zap.Int64(TableCapacity, counts[TableCapacity]),
		zap.Int("regions", len(snap.regions)),
	)
	return counts, nil
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")))
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: prepare insert %s", table)
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert %s", table)
		}
	}
	return int64(len(rows)), nil
}

func (s *SQLiteStore) LoadTable(ctx context.Context, name string) (*model.Table, error) {
	if err := checkTable(name); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT seq, code, name, year, value FROM %s ORDER BY seq, year`, name))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", name)
	}
	defer rows.Close() //nolint:errcheck

	b := newTableBuilder()
	for rows.Next() {
		var (
			seq, year  int
			code, rn   string
			value      sql.NullFloat64
			valuePoint *float64
		)
		if err := rows.Scan(&seq, &code, &rn, &year, &value); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s", name)
		}
		if value.Valid {
			valuePoint = &value.Float64
		}
		b.add(seq, code, rn, year, valuePoint)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "sqlite: iterate %s", name)
	}
	return b.table(), nil
}

func (s *SQLiteStore) Schemas(ctx context.Context) (string, error) {
	cols := make(map[string][]column, len(schemaTables))
	for _, t := range schemaTables {
		rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", t))
		if err != nil {
			return "", eris.Wrapf(err, "sqlite: table info %s", t)
		}
		for rows.Next() {
			var (
				cid, notNull, pk int
				name, typ        string
				dflt             sql.NullString
			)
			if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
				rows.Close() //nolint:errcheck
				return "", eris.Wrapf(err, "sqlite: scan table info %s", t)
			}
			cols[t] = append(cols[t], column{name: name, typ: typ})
		}
		err = rows.Err()
		rows.Close() //nolint:errcheck
		if err != nil {
			return "", eris.Wrapf(err, "sqlite: iterate table info %s", t)
		}
	}
	return formatSchemas(schemaTables, cols), nil
}
