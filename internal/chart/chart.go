// Package chart renders per-region yearly series as PNG line charts.
package chart

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	charts "github.com/vicanso/go-charts/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// ErrNoSeries is returned when a region has no readings to plot.
var ErrNoSeries = eris.New("chart: region has no readings")

// Options controls chart dimensions and theme.
type Options struct {
	Width  int
	Height int
	Theme  string
}

// DefaultOptions returns the size used by the region chart endpoint.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 320, Theme: "light"}
}

var printer = message.NewPrinter(language.BritishEnglish)

// FormatValue renders a reading with two decimals and en-GB digit grouping.
// Missing readings render as "No data".
func FormatValue(v float64) string {
	if v == model.NoData || math.IsNaN(v) || math.IsInf(v, 0) {
		return model.NoDataLabel
	}
	return printer.Sprintf("%.2f", v)
}

// RegionTrend plots a region's readings over the given years. Years without
// a reading are left off the axis.
func RegionTrend(row model.Row, years []int, src model.Source, opts Options) ([]byte, error) {
	var (
		labels []string
		values []float64
		sum    float64
	)
	for _, y := range years {
		v, ok := row.Value(y)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		labels = append(labels, fmt.Sprint(y))
		values = append(values, v)
		sum += v
	}
	if len(values) == 0 {
		return nil, eris.Wrapf(ErrNoSeries, "%s", row.Code)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}

	title := fmt.Sprintf("%s: %s (average %s)", row.Name, src.Title(), FormatValue(sum/float64(len(values))))

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(title),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{src.Title()}, charts.PositionRight),
		charts.ThemeOptionFunc(opts.Theme),
		charts.WidthOptionFunc(opts.Width),
		charts.HeightOptionFunc(opts.Height),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "chart: render %s", row.Code)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, eris.Wrap(err, "chart: encode png")
	}
	return buf, nil
}
