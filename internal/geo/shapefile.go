package geo

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/home-capacity-viewer/internal/fetcher"
)

// ReadShapefile converts polygon records into GeoJSON features carrying
// every attribute as a string property. Coordinates are used as stored, so
// the shapefile must already be in WGS84.
func ReadShapefile(path, codeProp, nameProp string) (*geojson.FeatureCollection, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "geo: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}
	if fieldIndex(names, codeProp) < 0 || fieldIndex(names, nameProp) < 0 {
		return nil, eris.Errorf("geo: required shapefile fields (%s, %s) not found", codeProp, nameProp)
	}

	fc := &geojson.FeatureCollection{}
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		g := polygonToMultiPolygon(poly)
		if g == nil {
			skipped++
			continue
		}

		props := make(map[string]interface{}, len(names))
		for i, n := range names {
			props[n] = strings.TrimSpace(reader.Attribute(i))
		}
		fc.Features = append(fc.Features, &geojson.Feature{Geometry: g, Properties: props})
	}

	if skipped > 0 {
		zap.L().Warn("geo: skipped non-polygon shapefile records", zap.Int("skipped", skipped))
	}
	return fc, nil
}

func readShapefileZIP(zipPath string, opts Options) (*geojson.FeatureCollection, error) {
	dir, err := os.MkdirTemp(opts.TempDir, "lad-shp-")
	if err != nil {
		return nil, eris.Wrap(err, "geo: create extract dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	shpPath, err := fetcher.ExtractShapefile(zipPath, dir)
	if err != nil {
		return nil, eris.Wrap(err, "geo: extract shapefile zip")
	}
	return ReadShapefile(shpPath, opts.CodeProperty, opts.NameProperty)
}

func fieldIndex(names []string, name string) int {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}

// polygonToMultiPolygon converts a shapefile Polygon, one ring per part, to
// a geom.MultiPolygon. Malformed parts are skipped.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, int(end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("geo: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geo: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
