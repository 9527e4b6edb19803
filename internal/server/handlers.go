package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/home-capacity-viewer/internal/chart"
	"github.com/sells-group/home-capacity-viewer/internal/choropleth"
	"github.com/sells-group/home-capacity-viewer/internal/geo"
	"github.com/sells-group/home-capacity-viewer/internal/model"
	"github.com/sells-group/home-capacity-viewer/internal/query"
	"github.com/sells-group/home-capacity-viewer/internal/tables"
)

// ColorProperty carries each feature's fill color in map responses.
const ColorProperty = "color"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.opts.Ready.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Status == nil {
		writeError(w, http.StatusServiceUnavailable, "status collector not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Status.Collect())
}

// YearsResponse is the selectable year range.
type YearsResponse struct {
	Min     int   `json:"min"`
	Max     int   `json:"max"`
	Default int   `json:"default"`
	Years   []int `json:"years"`
}

// DefaultYear clamps the configured year into the water table's range.
func DefaultYear(years []int, preferred int) int {
	if len(years) == 0 {
		return preferred
	}
	lo, hi := years[0], years[len(years)-1]
	return min(max(preferred, lo), hi)
}

func (s *Server) handleYears(w http.ResponseWriter, _ *http.Request) {
	if len(s.years) == 0 {
		writeError(w, http.StatusNotFound, "no year columns loaded")
		return
	}
	writeJSON(w, http.StatusOK, YearsResponse{
		Min:     s.years[0],
		Max:     s.years[len(s.years)-1],
		Default: DefaultYear(s.years, s.opts.DefaultYear),
		Years:   s.years,
	})
}

// selection reads ?year= and ?source=. A missing year means the default
// year; an unknown source means water.
func (s *Server) selection(r *http.Request) (int, model.Source, error) {
	src := model.ParseSource(r.URL.Query().Get("source"))
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return DefaultYear(s.years, s.opts.DefaultYear), src, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, src, fmt.Errorf("invalid year %q", raw)
	}
	if len(s.years) > 0 && (year < s.years[0] || year > s.years[len(s.years)-1]) {
		return 0, src, fmt.Errorf("year must be between %d and %d", s.years[0], s.years[len(s.years)-1])
	}
	return year, src, nil
}

// MapResponse is one map refresh: shaded features plus the legend. State is
// nil when no region has data for the selection.
type MapResponse struct {
	Year     int                        `json:"year"`
	Source   model.Source               `json:"source"`
	Title    string                     `json:"title"`
	State    *choropleth.State          `json:"state"`
	Message  string                     `json:"message,omitempty"`
	Features *geojson.FeatureCollection `json:"features"`
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	year, src, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := s.opts.Metrics.Now()
	resp := RefreshMap(s.opts.Layer, s.sources[src], year, src)
	if resp.State == nil {
		s.opts.Metrics.ObserveNoValues(string(src))
	}
	s.opts.Metrics.ObserveRefresh(string(src), start)

	writeJSON(w, http.StatusOK, resp)
}

// RefreshMap recomputes the classification for one year and source and
// shades a fresh copy of the features.
func RefreshMap(layer *geo.Layer, t *model.Table, year int, src model.Source) MapResponse {
	resp := MapResponse{Year: year, Source: src, Title: src.Title()}

	state, err := choropleth.Recompute(layer.Values(t, year))
	if err == nil {
		resp.State = &state
	} else {
		resp.Message = fmt.Sprintf("No data for %d", year)
		zap.L().Info("map: nothing to classify",
			zap.Int("year", year),
			zap.String("source", string(src)),
		)
	}

	fc := layer.Annotate(t, year)
	for _, f := range fc.Features {
		color := choropleth.MissingColor
		if resp.State != nil {
			color = resp.State.Classify(f.Properties[geo.ValueProperty].(float64))
		}
		f.Properties[ColorProperty] = color
	}
	resp.Features = fc
	return resp
}

// RegionInfo is the hover panel for one region.
type RegionInfo struct {
	Code    string       `json:"code"`
	Name    string       `json:"name"`
	Year    int          `json:"year"`
	Source  model.Source `json:"source"`
	Title   string       `json:"title"`
	Value   *float64     `json:"value"`
	Display string       `json:"display"`
	Lines   []string     `json:"lines"`
}

// HoverInfo renders the panel text. A missing reading shows "No data".
func HoverInfo(code, name string, t *model.Table, year int, src model.Source) RegionInfo {
	info := RegionInfo{Code: code, Name: name, Year: year, Source: src, Title: src.Title()}
	display := model.NoDataLabel
	if v, ok := t.Lookup(code, year); ok && v != model.NoData && !math.IsNaN(v) && !math.IsInf(v, 0) {
		info.Value = &v
		display = fmt.Sprintf("%.2f", v)
	}
	info.Display = "Value: " + display
	info.Lines = []string{info.Title, name, info.Display}
	return info
}

func (s *Server) regionName(code string, t *model.Table) (string, bool) {
	if name, ok := s.opts.Layer.Name(code); ok && name != "" {
		return name, true
	}
	if row, ok := t.Row(code); ok {
		return row.Name, true
	}
	return "", false
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	year, src, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	code := chi.URLParam(r, "code")
	t := s.sources[src]
	name, ok := s.regionName(code, t)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("region %s not found", code))
		return
	}
	writeJSON(w, http.StatusOK, HoverInfo(code, name, t, year, src))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	src := model.ParseSource(r.URL.Query().Get("source"))
	code := chi.URLParam(r, "code")
	t := s.sources[src]

	row, ok := t.Row(code)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("region %s not found", code))
		return
	}
	png, err := chart.RegionTrend(row, t.Years, src, chart.DefaultOptions())
	if errors.Is(err, chart.ErrNoSeries) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("region %s has no %s readings", code, src))
		return
	}
	if err != nil {
		zap.L().Error("chart: render failed", zap.String("region", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	g, ok := s.grids[model.Source(name)]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("table %s not found", name))
		return
	}

	q := r.URL.Query()
	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	size, err := intParam(q.Get("page_size"), tables.DefaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if col := q.Get("sort"); col != "" {
		desc := strings.EqualFold(q.Get("order"), "desc")
		g, err = g.Sort(col, desc)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown sort column %q", col))
			return
		}
	}
	writeJSON(w, http.StatusOK, g.Page(page, size))
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid positive integer %q", raw)
	}
	return n, nil
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse carries the raw answer and its display paragraphs.
type QueryResponse struct {
	Answer     string   `json:"answer"`
	Paragraphs []string `json:"paragraphs"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer := s.opts.Answerer.Answer(r.Context(), req.Query)
	paragraphs := query.Paragraphs(answer)
	if paragraphs == nil {
		paragraphs = []string{}
	}
	writeJSON(w, http.StatusOK, QueryResponse{Answer: answer, Paragraphs: paragraphs})
}
