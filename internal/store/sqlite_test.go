package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_SaveAndLoad(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	counts, err := st.SaveTables(ctx, fixture())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{TableWater: 3, TableEnergy: 4, TableCapacity: 4}, counts)

	water, err := st.LoadTable(ctx, TableWater)
	require.NoError(t, err)
	assert.Equal(t, []int{2025, 2026}, water.Years)
	require.Len(t, water.Rows, 2)
	assert.Equal(t, model.Region{Code: "E06000001", Name: "Hartlepool"}, water.Rows[0].Region)
	assert.Equal(t, map[int]float64{2025: 1.5, 2026: -0.5}, water.Rows[0].Values)
	assert.Equal(t, map[int]float64{2025: 0.2}, water.Rows[1].Values)

	capacity, err := st.LoadTable(ctx, TableCapacity)
	require.NoError(t, err)
	v, ok := capacity.Lookup("E06000001", 2025)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
	v, _ = capacity.Lookup("E06000002", 2026)
	assert.Equal(t, 0.0, v)

	var label string
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT label FROM water_data WHERE code = ? AND year = ?`, "E06000001", 2026).Scan(&label))
	assert.Equal(t, string(model.RiskLowDeficit), label)
}

func TestSQLite_SaveClearsPreviousLoad(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.SaveTables(ctx, fixture())
	require.NoError(t, err)

	p := fixture()
	p.Water.Rows = p.Water.Rows[:1]
	_, err = st.SaveTables(ctx, p)
	require.NoError(t, err)

	water, err := st.LoadTable(ctx, TableWater)
	require.NoError(t, err)
	assert.Len(t, water.Rows, 1)

	var stats, regions int
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM region_stats WHERE source = ?`, TableWater).Scan(&stats))
	assert.Equal(t, 1, stats)
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM regions`).Scan(&regions))
	assert.Equal(t, 2, regions)
}

func TestSQLite_StatsNullForNonFinite(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.SaveTables(ctx, fixture())
	require.NoError(t, err)

	// A single present value leaves the sample deviation undefined.
	var std *float64
	var trend string
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT std, trend FROM region_stats WHERE source = ? AND code = ?`, TableWater, "E06000002").Scan(&std, &trend))
	assert.Nil(t, std)
	assert.Equal(t, string(model.TrendInsufficientData), trend)
}

func TestSQLite_LoadTable_Unknown(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.LoadTable(context.Background(), "regions; DROP TABLE water_data")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestSQLite_LoadTable_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)
	tbl, err := st.LoadTable(context.Background(), TableEnergy)
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
	assert.Empty(t, tbl.Years)
}

func TestSQLite_Schemas(t *testing.T) {
	st := newTestSQLiteStore(t)
	out, err := st.Schemas(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out, "\nwater_data:\n  id (TEXT)\n  seq (INTEGER)\n")
	assert.Contains(t, out, "\nhome_capacity_data:\n")
	assert.Contains(t, out, "  change_5yr (REAL)\n")
	assert.Contains(t, out, "\nregions:\n  code (TEXT)\n")
}

func TestSQLite_Ping(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Ping(context.Background()))
}
