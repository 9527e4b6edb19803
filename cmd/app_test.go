package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/home-capacity-viewer/internal/config"
)

const (
	waterCSV = `LAD24CD,LAD24NM,2025,2026
E06000001,Hartlepool,1.5,-0.5
E06000002,Middlesbrough,0.2,
`
	energyCSV = `LAD24CD,LAD24NM,2025,2026
E06000001,Hartlepool,2,3
E06000002,Middlesbrough,-1,4
`
	boundaries = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"LAD24CD": "E06000001", "LAD24NM": "Hartlepool"},
   "geometry": {"type": "Polygon", "coordinates": [[[-1.3,54.6],[-1.1,54.6],[-1.1,54.7],[-1.3,54.6]]]}},
  {"type": "Feature", "properties": {"LAD24CD": "E06000002", "LAD24NM": "Middlesbrough"},
   "geometry": {"type": "Polygon", "coordinates": [[[-1.3,54.5],[-1.2,54.5],[-1.2,54.6],[-1.3,54.5]]]}}
]}`
)

// useTestConfig points cfg at fixture tables in a temp dir and restores the
// previous config when the test ends.
func useTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	water := filepath.Join(dir, "LA_water_output.csv")
	energy := filepath.Join(dir, "LA_energy_output.csv")
	geometry := filepath.Join(dir, "lad.geojson")
	require.NoError(t, os.WriteFile(water, []byte(waterCSV), 0o644))
	require.NoError(t, os.WriteFile(energy, []byte(energyCSV), 0o644))
	require.NoError(t, os.WriteFile(geometry, []byte(boundaries), 0o644))

	oldCfg := cfg
	cfg = &config.Config{
		Data: config.DataConfig{
			WaterPath:     water,
			EnergyPath:    energy,
			ClassifyWater: true,
			DefaultYear:   2025,
		},
		Geometry: config.GeometryConfig{
			Path:         geometry,
			CodeProperty: "LAD24CD",
			NameProperty: "LAD24NM",
		},
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(dir, "test.db"),
		},
		LLM: config.LLMConfig{Provider: "anthropic"},
	}
	t.Cleanup(func() { cfg = oldCfg })
	return dir
}

func TestInitApp(t *testing.T) {
	useTestConfig(t)

	env, err := initApp(context.Background(), false)
	require.NoError(t, err)

	assert.Nil(t, env.Layer)
	assert.Len(t, env.Processed.Water.Rows, 2)
	assert.Len(t, env.Processed.Energy.Rows, 2)
	assert.Equal(t, []int{2025, 2026}, env.Processed.Capacity.Years)
	assert.True(t, env.Processed.Water.Classified)
	assert.False(t, env.LoadedAt.IsZero())
}

func TestInitApp_WithGeometry(t *testing.T) {
	useTestConfig(t)

	env, err := initApp(context.Background(), true)
	require.NoError(t, err)
	require.NotNil(t, env.Layer)
	assert.Equal(t, 2, env.Layer.Len())
}

func TestInitApp_MissingTable(t *testing.T) {
	useTestConfig(t)
	cfg.Data.EnergyPath = filepath.Join(t.TempDir(), "missing.csv")

	_, err := initApp(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load energy table")
}

func TestNewAnswerer_RequiresLLMConfig(t *testing.T) {
	useTestConfig(t)

	env, err := initApp(context.Background(), false)
	require.NoError(t, err)

	_, err = newAnswerer(env.Processed, nil)
	assert.ErrorIs(t, err, config.ErrLLMNotConfigured)

	cfg.LLM.Key = "sk-test"
	cfg.LLM.Model = "claude-haiku-4-5-20251001"
	cfg.LLM.MaxTokens = 500
	cfg.LLM.Temperature = 0.7
	h, err := newAnswerer(env.Processed, nil)
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestInitStore_SQLite(t *testing.T) {
	useTestConfig(t)

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	assert.NoError(t, st.Ping(context.Background()))
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	useTestConfig(t)
	cfg.Store.Driver = "mysql"

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}
