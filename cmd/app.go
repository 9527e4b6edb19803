package main

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/home-capacity-viewer/internal/dataset"
	"github.com/sells-group/home-capacity-viewer/internal/fetcher"
	"github.com/sells-group/home-capacity-viewer/internal/geo"
	"github.com/sells-group/home-capacity-viewer/internal/llmcontext"
	"github.com/sells-group/home-capacity-viewer/internal/model"
	"github.com/sells-group/home-capacity-viewer/internal/monitoring"
	"github.com/sells-group/home-capacity-viewer/internal/processor"
	"github.com/sells-group/home-capacity-viewer/internal/query"
	"github.com/sells-group/home-capacity-viewer/internal/resilience"
	"github.com/sells-group/home-capacity-viewer/internal/store"
	anthropicpkg "github.com/sells-group/home-capacity-viewer/pkg/anthropic"
)

// appEnv holds the processed tables, and the boundary layer when a command
// asked for one.
type appEnv struct {
	Processed *model.Processed
	Layer     *geo.Layer // nil unless loaded with geometry
	LoadedAt  time.Time
}

// initApp loads the raw tables, and optionally the boundaries, concurrently
// and runs the processor once.
func initApp(ctx context.Context, withGeometry bool) (*appEnv, error) {
	var (
		water, energy *model.Table
		layer         *geo.Layer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := dataset.Load(gctx, cfg.Data.WaterPath)
		if err != nil {
			return eris.Wrap(err, "load water table")
		}
		water = t
		return nil
	})
	g.Go(func() error {
		t, err := dataset.Load(gctx, cfg.Data.EnergyPath)
		if err != nil {
			return eris.Wrap(err, "load energy table")
		}
		energy = t
		return nil
	})
	if withGeometry {
		g.Go(func() error {
			l, err := geo.Load(gctx, newFetcher(), geo.Options{
				URL:          cfg.Geometry.URL,
				Path:         cfg.Geometry.Path,
				CodeProperty: cfg.Geometry.CodeProperty,
				NameProperty: cfg.Geometry.NameProperty,
				TempDir:      cfg.Geometry.TempDir,
			})
			if err != nil {
				return eris.Wrap(err, "load boundaries")
			}
			layer = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := processor.Process(water, energy, cfg.Data.ClassifyWater)
	zap.L().Info("tables processed",
		zap.Int("water_regions", len(p.Water.Rows)),
		zap.Int("energy_regions", len(p.Energy.Rows)),
		zap.Int("capacity_regions", len(p.Capacity.Rows)),
		zap.Bool("classified", p.Water.Classified),
	)

	return &appEnv{Processed: p, Layer: layer, LoadedAt: time.Now()}, nil
}

func newFetcher() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
		Limiters:   fetcher.DefaultLimiters(),
	})
}

// newAnswerer validates the LLM settings and builds the query handler over
// the processed tables. The call is made once per question with no retry,
// behind a circuit breaker.
func newAnswerer(p *model.Processed, metrics *monitoring.Metrics) (*query.Handler, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, err
	}

	client := anthropicpkg.NewClient(cfg.LLM.Key,
		option.WithRequestTimeout(time.Duration(cfg.LLM.TimeoutSecs)*time.Second),
	)
	completer := anthropicpkg.NewCompleter(client, anthropicpkg.CompleterConfig{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Cache:       cfg.LLM.CacheContext,
	})
	breaker := resilience.NewBreaker(resilience.Config{
		Name:             "anthropic",
		FailureThreshold: cfg.LLM.BreakerFailures,
		ResetTimeout:     time.Duration(cfg.LLM.BreakerResetSecs) * time.Second,
	})
	return query.NewHandler(query.Guard(completer, breaker), llmcontext.Build(p), metrics), nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
