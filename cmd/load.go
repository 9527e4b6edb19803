package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	loadSchemas     bool
	loadSchemasOnly bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Write the processed tables to the configured store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		mode := "load"
		if loadSchemasOnly {
			mode = "schemas"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		if !loadSchemasOnly {
			env, err := initApp(ctx, false)
			if err != nil {
				return err
			}
			counts, err := st.SaveTables(ctx, env.Processed)
			if err != nil {
				return eris.Wrap(err, "save tables")
			}
			for table, n := range counts {
				zap.L().Info("table loaded", zap.String("table", table), zap.Int64("rows", n))
			}
		}

		if loadSchemas || loadSchemasOnly {
			schemas, err := st.Schemas(ctx)
			if err != nil {
				return eris.Wrap(err, "describe schemas")
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), schemas)
			return err
		}
		return nil
	},
}

func init() {
	loadCmd.Flags().BoolVar(&loadSchemas, "schemas", false, "print table schemas after loading")
	loadCmd.Flags().BoolVar(&loadSchemasOnly, "schemas-only", false, "print table schemas without loading")
	rootCmd.AddCommand(loadCmd)
}
