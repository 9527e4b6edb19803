package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// shapefileParts are the sidecar extensions a shapefile reader needs.
var shapefileParts = map[string]bool{
	".shp": true,
	".shx": true,
	".dbf": true,
	".prj": true,
	".cpg": true,
}

// ExtractShapefile copies the first shapefile found in a ZIP archive into
// destDir and returns the path of its .shp. Entries are flattened to their
// base name, so nested folders and "../" names cannot escape destDir.
// Files that are not shapefile parts are skipped.
func ExtractShapefile(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	// The .shp decides the stem; its sidecars must share it.
	var stem string
	for _, f := range r.File {
		if strings.EqualFold(path.Ext(f.Name), ".shp") && !f.FileInfo().IsDir() {
			stem = strings.TrimSuffix(path.Base(f.Name), path.Ext(f.Name))
			break
		}
	}
	if stem == "" {
		return "", eris.New("zip: no .shp file in archive")
	}

	var shpPath string
	for _, f := range r.File {
		base := path.Base(f.Name)
		ext := strings.ToLower(path.Ext(base))
		if f.FileInfo().IsDir() || !shapefileParts[ext] || !strings.EqualFold(strings.TrimSuffix(base, path.Ext(base)), stem) {
			continue
		}
		// Lower-case extensions so the reader finds .dbf next to .shp.
		dest := filepath.Join(destDir, stem+ext)
		if err := copyEntry(f, dest); err != nil {
			return "", err
		}
		if ext == ".shp" {
			shpPath = dest
		}
	}
	return shpPath, nil
}

func copyEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return eris.Wrapf(err, "zip: open %s", f.Name)
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "zip: create file")
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return eris.Wrapf(err, "zip: write %s", filepath.Base(dest))
	}
	return eris.Wrap(out.Close(), "zip: close file")
}
