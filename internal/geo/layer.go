// Package geo loads LAD boundary geometry and annotates it with the selected
// year's readings for map rendering.
package geo

import (
	"fmt"
	"maps"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// Properties added to every annotated feature.
const (
	ValueProperty = "value"
	NameProperty  = "name"
)

// Layer is the region boundary collection, read-only once built.
type Layer struct {
	features []*geojson.Feature
	codes    []string
	names    []string
	index    map[string]int
	bounds   *geom.Bounds
}

// NewLayer indexes a feature collection by the code property. Features
// without a code are dropped.
func NewLayer(fc *geojson.FeatureCollection, codeProp, nameProp string) (*Layer, error) {
	if fc == nil || len(fc.Features) == 0 {
		return nil, eris.New("geo: feature collection is empty")
	}

	l := &Layer{index: make(map[string]int, len(fc.Features))}
	for _, f := range fc.Features {
		code := propString(f.Properties, codeProp)
		if code == "" {
			continue
		}
		if _, dup := l.index[code]; dup {
			continue
		}
		l.index[code] = len(l.features)
		l.features = append(l.features, f)
		l.codes = append(l.codes, code)
		l.names = append(l.names, propString(f.Properties, nameProp))

		if f.Geometry != nil {
			if l.bounds == nil {
				l.bounds = geom.NewBounds(f.Geometry.Layout())
			}
			l.bounds.Extend(f.Geometry)
		}
	}
	if len(l.features) == 0 {
		return nil, eris.Errorf("geo: no feature carries the %s property", codeProp)
	}
	return l, nil
}

// Len returns the number of regions.
func (l *Layer) Len() int { return len(l.features) }

// Codes returns region codes in feature order.
func (l *Layer) Codes() []string { return l.codes }

// Bounds returns the extent of all geometry, or nil if none has geometry.
func (l *Layer) Bounds() *geom.Bounds { return l.bounds }

// Name returns the display name of a region from its geometry properties.
func (l *Layer) Name(code string) (string, bool) {
	i, ok := l.index[code]
	if !ok {
		return "", false
	}
	return l.names[i], true
}

// Values returns each feature's reading for year in feature order. Regions
// without a row or a reading that year get model.NoData.
func (l *Layer) Values(t *model.Table, year int) []float64 {
	idx := t.Index()
	out := make([]float64, len(l.codes))
	for i, code := range l.codes {
		out[i] = lookup(idx, code, year)
	}
	return out
}

// Annotate returns a copy of the collection whose features carry the
// reading for year under "value" and the region name under "name".
// Geometry is shared with the layer; property maps are fresh.
func (l *Layer) Annotate(t *model.Table, year int) *geojson.FeatureCollection {
	idx := t.Index()
	fc := &geojson.FeatureCollection{
		BBox:     l.bounds,
		Features: make([]*geojson.Feature, len(l.features)),
	}
	for i, f := range l.features {
		props := maps.Clone(f.Properties)
		if props == nil {
			props = map[string]interface{}{}
		}
		name := l.names[i]
		if row, ok := idx[l.codes[i]]; ok && row.Name != "" {
			name = row.Name
		}
		props[ValueProperty] = lookup(idx, l.codes[i], year)
		props[NameProperty] = name
		fc.Features[i] = &geojson.Feature{
			ID:         f.ID,
			BBox:       f.BBox,
			Geometry:   f.Geometry,
			Properties: props,
		}
	}
	return fc
}

func lookup(idx map[string]model.Row, code string, year int) float64 {
	row, ok := idx[code]
	if !ok {
		return model.NoData
	}
	v, ok := row.Value(year)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return model.NoData
	}
	return v
}

func propString(props map[string]interface{}, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}
