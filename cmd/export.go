package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/home-capacity-viewer/internal/fetcher"
	"github.com/sells-group/home-capacity-viewer/internal/store"
	"github.com/sells-group/home-capacity-viewer/internal/tables"
)

var (
	exportOutput    string
	exportFromStore bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the processed tables to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var (
			grids []*tables.Grid
			err   error
		)
		if exportFromStore {
			if err := cfg.Validate("schemas"); err != nil {
				return err
			}
			grids, err = storedGrids(ctx)
		} else {
			if err := cfg.Validate("export"); err != nil {
				return err
			}
			var env *appEnv
			env, err = initApp(ctx, false)
			if err == nil {
				grids = tables.All(env.Processed)
			}
		}
		if err != nil {
			return err
		}

		if err := fetcher.WriteXLSX(exportOutput, gridSheets(grids)); err != nil {
			return eris.Wrap(err, "write workbook")
		}
		zap.L().Info("export complete",
			zap.String("path", exportOutput),
			zap.Int("sheets", len(grids)),
		)
		return nil
	},
}

func storedGrids(ctx context.Context) ([]*tables.Grid, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	defer st.Close() //nolint:errcheck

	grids := make([]*tables.Grid, 0, len(store.DataTables))
	for _, name := range store.DataTables {
		t, err := st.LoadTable(ctx, name)
		if err != nil {
			return nil, eris.Wrapf(err, "load %s", name)
		}
		grids = append(grids, tables.FromTable(name, t))
	}
	return grids, nil
}

func gridSheets(grids []*tables.Grid) []fetcher.Sheet {
	sheets := make([]fetcher.Sheet, len(grids))
	for i, g := range grids {
		sheets[i] = fetcher.Sheet{Name: g.Name, Header: g.Columns, Rows: g.Rows}
	}
	return sheets
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "home_capacity.xlsx", "workbook path")
	exportCmd.Flags().BoolVar(&exportFromStore, "from-store", false, "export the tables last written by load")
	rootCmd.AddCommand(exportCmd)
}
