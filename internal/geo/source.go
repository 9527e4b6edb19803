package geo

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/home-capacity-viewer/internal/fetcher"
)

// Options selects where boundaries come from. Path wins over URL. Both may
// name a GeoJSON document, a .shp file or a .zip holding a shapefile.
type Options struct {
	URL          string
	Path         string
	CodeProperty string
	NameProperty string
	TempDir      string
}

// Load fetches the boundary collection once and indexes it.
func Load(ctx context.Context, f fetcher.Fetcher, opts Options) (*Layer, error) {
	log := zap.L().With(zap.String("component", "geo.source"))

	var (
		fc  *geojson.FeatureCollection
		err error
	)
	switch {
	case opts.Path != "":
		log.Info("loading boundaries from file", zap.String("path", opts.Path))
		fc, err = loadFile(opts.Path, opts)
	case opts.URL != "":
		log.Info("downloading boundaries", zap.String("url", opts.URL))
		fc, err = loadURL(ctx, f, opts)
	default:
		return nil, eris.New("geo: no geometry path or url configured")
	}
	if err != nil {
		return nil, err
	}

	layer, err := NewLayer(fc, opts.CodeProperty, opts.NameProperty)
	if err != nil {
		return nil, err
	}
	log.Info("boundaries loaded", zap.Int("regions", layer.Len()))
	return layer, nil
}

func loadFile(path string, opts Options) (*geojson.FeatureCollection, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return ReadShapefile(path, opts.CodeProperty, opts.NameProperty)
	case ".zip":
		return readShapefileZIP(path, opts)
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "geo: open geojson")
		}
		defer file.Close() //nolint:errcheck
		return DecodeGeoJSON(file)
	}
}

func loadURL(ctx context.Context, f fetcher.Fetcher, opts Options) (*geojson.FeatureCollection, error) {
	if strings.HasSuffix(strings.ToLower(strings.SplitN(opts.URL, "?", 2)[0]), ".zip") {
		dir, err := os.MkdirTemp(opts.TempDir, "lad-boundaries-")
		if err != nil {
			return nil, eris.Wrap(err, "geo: create temp dir")
		}
		defer os.RemoveAll(dir) //nolint:errcheck

		zipPath := filepath.Join(dir, "boundaries.zip")
		if _, err := f.DownloadToFile(ctx, opts.URL, zipPath); err != nil {
			return nil, eris.Wrap(err, "geo: download shapefile")
		}
		return readShapefileZIP(zipPath, opts)
	}

	body, err := f.Download(ctx, opts.URL)
	if err != nil {
		return nil, eris.Wrap(err, "geo: download geojson")
	}
	defer body.Close() //nolint:errcheck
	return DecodeGeoJSON(body)
}

// DecodeGeoJSON reads a GeoJSON FeatureCollection.
func DecodeGeoJSON(r io.Reader) (*geojson.FeatureCollection, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, eris.Wrap(err, "geo: decode geojson")
	}
	return &fc, nil
}
