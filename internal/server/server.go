// Package server exposes the map, hover, table, chart and query endpoints
// over HTTP, plus health, readiness and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/home-capacity-viewer/internal/geo"
	"github.com/sells-group/home-capacity-viewer/internal/model"
	"github.com/sells-group/home-capacity-viewer/internal/monitoring"
	"github.com/sells-group/home-capacity-viewer/internal/tables"
)

// Answerer turns a question into a reply. It never fails.
type Answerer interface {
	Answer(ctx context.Context, question string) string
}

// ReadinessChecker reports whether a backing service is reachable.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

// Options wires the server to the data built at startup.
type Options struct {
	Addr           string
	Processed      *model.Processed
	Layer          *geo.Layer
	Answerer       Answerer
	Ready          ReadinessChecker // optional
	Metrics        *monitoring.Metrics
	Status         *monitoring.Collector
	DefaultYear    int
	AllowedOrigins []string
}

// Server serves the viewer API. Everything it reads is built once in New
// and never written afterwards.
type Server struct {
	httpServer *http.Server
	opts       Options
	sources    map[model.Source]*model.Table
	grids      map[model.Source]*tables.Grid
	years      []int
}

// New builds the router and the per-source lookup tables.
func New(opts Options) *Server {
	p := opts.Processed
	s := &Server{
		opts:    opts,
		sources: SourceTables(p),
		grids:   make(map[model.Source]*tables.Grid, 3),
		years:   slices.Sorted(slices.Values(p.Water.Years)),
	}
	for _, g := range tables.All(p) {
		s.grids[model.Source(g.Name)] = g
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/years", s.handleYears)
		r.Get("/map", s.handleMap)
		r.Get("/regions/{code}", s.handleRegion)
		r.Get("/regions/{code}/chart.png", s.handleChart)
		r.Get("/tables/{name}", s.handleTable)
		r.Post("/query", s.handleQuery)
	})

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// SourceTables maps each map source to the table it shades. Water and energy
// use the raw readings; capacity uses the derived table.
func SourceTables(p *model.Processed) map[model.Source]*model.Table {
	water := &model.Table{Years: p.Water.Years, Rows: make([]model.Row, len(p.Water.Rows))}
	for i, r := range p.Water.Rows {
		water.Rows[i] = r.Row
	}
	energy := &model.Table{Years: p.Energy.Years, Rows: make([]model.Row, len(p.Energy.Rows))}
	for i, r := range p.Energy.Rows {
		energy.Rows[i] = r.Row
	}
	return map[model.Source]*model.Table{
		model.SourceWater:    water,
		model.SourceEnergy:   energy,
		model.SourceCapacity: &p.Capacity,
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	zap.L().Info("http server starting", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
