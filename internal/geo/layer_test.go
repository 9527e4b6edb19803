package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

const testCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 1,
     "properties": {"LAD24CD": "E06000001", "LAD24NM": "Hartlepool"},
     "geometry": {"type": "Polygon", "coordinates": [[[-1.3,54.6],[-1.1,54.6],[-1.1,54.7],[-1.3,54.6]]]}},
    {"type": "Feature", "id": 2,
     "properties": {"LAD24CD": "E06000002", "LAD24NM": "Middlesbrough"},
     "geometry": {"type": "Polygon", "coordinates": [[[-1.3,54.5],[-1.2,54.5],[-1.2,54.6],[-1.3,54.5]]]}},
    {"type": "Feature", "id": 3,
     "properties": {"LAD24CD": "E06000003", "LAD24NM": "Redcar and Cleveland"},
     "geometry": {"type": "Polygon", "coordinates": [[[-1.1,54.5],[-0.8,54.5],[-0.8,54.6],[-1.1,54.5]]]}},
    {"type": "Feature", "id": 4,
     "properties": {"LAD24NM": "Nowhere"},
     "geometry": null}
  ]
}`

func testLayer(t *testing.T) *Layer {
	t.Helper()
	fc, err := DecodeGeoJSON(strings.NewReader(testCollection))
	require.NoError(t, err)
	l, err := NewLayer(fc, model.CodeColumn, model.NameColumn)
	require.NoError(t, err)
	return l
}

func testTable() *model.Table {
	return &model.Table{
		Years: []int{2025, 2026},
		Rows: []model.Row{
			{Region: model.Region{Code: "E06000001", Name: "Hartlepool"}, Values: map[int]float64{2025: 1.5, 2026: -0.5}},
			{Region: model.Region{Code: "E06000002", Name: "Middlesbrough"}, Values: map[int]float64{2025: 0.25}},
		},
	}
}

func TestNewLayer(t *testing.T) {
	l := testLayer(t)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []string{"E06000001", "E06000002", "E06000003"}, l.Codes())

	name, ok := l.Name("E06000003")
	assert.True(t, ok)
	assert.Equal(t, "Redcar and Cleveland", name)

	_, ok = l.Name("W06000001")
	assert.False(t, ok)

	b := l.Bounds()
	require.NotNil(t, b)
	assert.InDelta(t, -1.3, b.Min(0), 1e-9)
	assert.InDelta(t, -0.8, b.Max(0), 1e-9)
	assert.InDelta(t, 54.5, b.Min(1), 1e-9)
	assert.InDelta(t, 54.7, b.Max(1), 1e-9)
}

func TestNewLayer_Errors(t *testing.T) {
	_, err := NewLayer(nil, model.CodeColumn, model.NameColumn)
	assert.Error(t, err)

	_, err = NewLayer(&geojson.FeatureCollection{}, model.CodeColumn, model.NameColumn)
	assert.Error(t, err)

	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{
		{Properties: map[string]interface{}{"OTHER": "x"}},
	}}
	_, err = NewLayer(fc, model.CodeColumn, model.NameColumn)
	assert.ErrorContains(t, err, model.CodeColumn)
}

func TestNewLayer_DuplicateCodeKeepsFirst(t *testing.T) {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{
		{Properties: map[string]interface{}{"LAD24CD": "E1", "LAD24NM": "First"}},
		{Properties: map[string]interface{}{"LAD24CD": "E1", "LAD24NM": "Second"}},
	}}
	l, err := NewLayer(fc, "LAD24CD", "LAD24NM")
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())
	name, _ := l.Name("E1")
	assert.Equal(t, "First", name)
	assert.Nil(t, l.Bounds())
}

func TestLayer_Values(t *testing.T) {
	l := testLayer(t)
	tbl := testTable()

	tests := []struct {
		name string
		year int
		want []float64
	}{
		{"all rows present", 2025, []float64{1.5, 0.25, model.NoData}},
		{"missing reading", 2026, []float64{-0.5, model.NoData, model.NoData}},
		{"year not in table", 2030, []float64{model.NoData, model.NoData, model.NoData}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Values(tbl, tt.year))
		})
	}
}

func TestLayer_Annotate(t *testing.T) {
	l := testLayer(t)
	tbl := testTable()
	tbl.Rows[0].Values[2026] = geomNaN()

	fc := l.Annotate(tbl, 2026)
	require.Len(t, fc.Features, 3)

	assert.Equal(t, model.NoData, fc.Features[0].Properties[ValueProperty])
	assert.Equal(t, "Hartlepool", fc.Features[0].Properties[NameProperty])
	assert.Equal(t, model.NoData, fc.Features[1].Properties[ValueProperty])
	assert.Equal(t, "Redcar and Cleveland", fc.Features[2].Properties[NameProperty])
	assert.Equal(t, "1", fc.Features[0].ID)

	again := l.Annotate(tbl, 2025)
	assert.Equal(t, 1.5, again.Features[0].Properties[ValueProperty])
	assert.Equal(t, model.NoData, fc.Features[0].Properties[ValueProperty], "earlier annotation is not mutated")

	_, leaked := l.features[0].Properties[ValueProperty]
	assert.False(t, leaked, "source features stay unannotated")

	out, err := again.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"value":1.5`)
	assert.IsType(t, &geom.Polygon{}, again.Features[0].Geometry)
}
