package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtractShapefile(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"LAD_MAY_2024_UK_BSC/LAD_MAY_2024_UK_BSC.SHP": "shp",
		"LAD_MAY_2024_UK_BSC/LAD_MAY_2024_UK_BSC.dbf": "dbf",
		"LAD_MAY_2024_UK_BSC/LAD_MAY_2024_UK_BSC.prj": "prj",
		"LAD_MAY_2024_UK_BSC/metadata.xml":            "xml",
		"README.txt":                                  "readme",
	})
	dest := t.TempDir()

	shpPath, err := ExtractShapefile(zipPath, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "LAD_MAY_2024_UK_BSC.shp"), shpPath)

	data, err := os.ReadFile(shpPath)
	require.NoError(t, err)
	assert.Equal(t, "shp", string(data))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"LAD_MAY_2024_UK_BSC.shp", "LAD_MAY_2024_UK_BSC.dbf", "LAD_MAY_2024_UK_BSC.prj"}, names)
}

func TestExtractShapefile_NoShapefile(t *testing.T) {
	zipPath := writeZip(t, map[string]string{"boundaries.geojson": "{}"})
	_, err := ExtractShapefile(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .shp file")
}

func TestExtractShapefile_FlattensTraversal(t *testing.T) {
	zipPath := writeZip(t, map[string]string{"../../lad.shp": "shp"})
	dest := t.TempDir()

	shpPath, err := ExtractShapefile(zipPath, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "lad.shp"), shpPath)
}

func TestExtractShapefile_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
	_, err := ExtractShapefile(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip: open archive")
}
