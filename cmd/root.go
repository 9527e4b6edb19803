package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/home-capacity-viewer/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "home-capacity-viewer",
	Short: "UK local authority water and energy forecast viewer",
	Long:  "Loads water and energy supply forecasts per Local Authority District, derives home building capacity, and serves a choropleth map, tables and an LLM question endpoint.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
