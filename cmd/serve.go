package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/home-capacity-viewer/internal/monitoring"
	"github.com/sells-group/home-capacity-viewer/internal/server"
	"github.com/sells-group/home-capacity-viewer/internal/store"
)

var (
	servePort       int
	serveCheckStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the map, tables and query API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		// Refuse to start without a usable LLM configuration.
		if err := cfg.ValidateLLM(); err != nil {
			return err
		}

		env, err := initApp(ctx, true)
		if err != nil {
			return err
		}

		metrics := monitoring.NewMetrics(nil)
		metrics.SetRegions("water", len(env.Processed.Water.Rows))
		metrics.SetRegions("energy", len(env.Processed.Energy.Rows))
		metrics.SetRegions("capacity", len(env.Processed.Capacity.Rows))

		answerer, err := newAnswerer(env.Processed, metrics)
		if err != nil {
			return err
		}

		var ready server.ReadinessChecker
		if serveCheckStore {
			st, err := initStore(ctx)
			if err != nil {
				return eris.Wrap(err, "open store")
			}
			defer func(st store.Store) { _ = st.Close() }(st)
			ready = st
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(server.Options{
			Addr:           fmt.Sprintf(":%d", port),
			Processed:      env.Processed,
			Layer:          env.Layer,
			Answerer:       answerer,
			Ready:          ready,
			Metrics:        metrics,
			Status:         monitoring.NewCollector(env.Processed, env.Layer.Len(), env.LoadedAt, nil),
			DefaultYear:    cfg.Data.DefaultYear,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		})

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveCheckStore, "check-store", false, "report the store in /readyz")
	rootCmd.AddCommand(serveCmd)
}
