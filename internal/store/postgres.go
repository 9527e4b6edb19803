package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/home-capacity-viewer/internal/db"
	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

func postgresValueTable(name string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id    TEXT PRIMARY KEY,
	seq   INTEGER NOT NULL,
	code  TEXT NOT NULL,
	name  TEXT NOT NULL,
	year  INTEGER NOT NULL,
	value DOUBLE PRECISION,
	label TEXT NOT NULL DEFAULT '',
	UNIQUE (code, year)
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_year ON %[1]s(year);
`, name)
}

var postgresMigration = postgresValueTable(TableWater) +
	postgresValueTable(TableEnergy) +
	postgresValueTable(TableCapacity) + `
CREATE TABLE IF NOT EXISTS region_stats (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	code       TEXT NOT NULL,
	trend      TEXT NOT NULL,
	change_5yr DOUBLE PRECISION,
	avg        DOUBLE PRECISION,
	std        DOUBLE PRECISION,
	max_value  DOUBLE PRECISION,
	min_value  DOUBLE PRECISION,
	avg_level  TEXT NOT NULL DEFAULT '',
	max_level  TEXT NOT NULL DEFAULT '',
	min_level  TEXT NOT NULL DEFAULT '',
	UNIQUE (source, code)
);

CREATE TABLE IF NOT EXISTS regions (
	code       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

var regionUpsert = db.UpsertConfig{
	Table:        TableRegions,
	Columns:      []string{"code", "name", "updated_at"},
	ConflictKeys: []string{"code"},
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveTables(ctx context.Context, p *model.Processed) (map[string]int64, error) {
	snap := flatten(p)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin load")
	}

	counts, err := s.saveTx(ctx, tx, snap)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit load")
	}

	zap.L().Info("postgres: tables saved",
		zap.Int64(TableWater, counts[TableWater]),
		zap.Int64(TableEnergy, counts[TableEnergy]),
		zap.Int64(TableCapacity, counts[TableCapacity]),
		zap.Int("regions", len(snap.regions)),
	)
	return counts, nil
}

func (s *PostgresStore) saveTx(ctx context.Context, tx pgx.Tx, snap snapshot) (map[string]int64, error) {
	for _, t := range clearedTables {
		if _, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{t}.Sanitize()); err != nil {
			return nil, eris.Wrapf(err, "postgres: clear %s", t)
		}
	}

	counts := make(map[string]int64, len(DataTables))
	for _, t := range DataTables {
		n, err := db.CopyFrom(ctx, tx, t, valueColumns, snap.values[t])
		if err != nil {
			return nil, err
		}
		counts[t] = n
	}
	if _, err := db.CopyFrom(ctx, tx, TableStats, statsColumns, snap.stats); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	regions := make([][]any, len(snap.regions))
	for i, r := range snap.regions {
		regions[i] = []any{r[0], r[1], now}
	}
	if _, err := db.BulkUpsert(ctx, tx, regionUpsert, regions); err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *PostgresStore) LoadTable(ctx context.Context, name string) (*model.Table, error) {
	if err := checkTable(name); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT seq, code, name, year, value FROM %s ORDER BY seq, year`, pgx.Identifier{name}.Sanitize()))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", name)
	}
	defer rows.Close()

	b := newTableBuilder()
	for rows.Next() {
		var (
			seq, year int32
			code, rn  string
			value     *float64
		)
		if err := rows.Scan(&seq, &code, &rn, &year, &value); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s", name)
		}
		b.add(int(seq), code, rn, int(year), value)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "postgres: iterate %s", name)
	}
	return b.table(), nil
}

func (s *PostgresStore) Schemas(ctx context.Context) (string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT table_name, column_name, data_type FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = ANY($1)
		 ORDER BY table_name, ordinal_position`, schemaTables)
	if err != nil {
		return "", eris.Wrap(err, "postgres: query columns")
	}
	defer rows.Close()

	cols := make(map[string][]column, len(schemaTables))
	for rows.Next() {
		var table string
		var c column
		if err := rows.Scan(&table, &c.name, &c.typ); err != nil {
			return "", eris.Wrap(err, "postgres: scan column")
		}
		cols[table] = append(cols[table], c)
	}
	if err := rows.Err(); err != nil {
		return "", eris.Wrap(err, "postgres: iterate columns")
	}
	return formatSchemas(schemaTables, cols), nil
}
