package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/home-capacity-viewer/internal/llmcontext"
	"github.com/sells-group/home-capacity-viewer/internal/model"
	"github.com/sells-group/home-capacity-viewer/internal/server"
)

var yearsFacts bool

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "Print the selectable year range",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("years"); err != nil {
			return err
		}

		env, err := initApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		return printYears(cmd.OutOrStdout(), env.Processed, cfg.Data.DefaultYear, yearsFacts)
	},
}

func printYears(w io.Writer, p *model.Processed, preferred int, facts bool) error {
	sources := server.SourceTables(p)
	water := sources[model.SourceWater]
	lo, hi, ok := water.YearRange()
	if !ok {
		_, err := fmt.Fprintln(w, "no year columns loaded")
		return err
	}
	def := server.DefaultYear([]int{lo, hi}, preferred)
	if _, err := fmt.Fprintf(w, "years: %d-%d (default %d)\n", lo, hi, def); err != nil {
		return err
	}
	if !facts {
		return nil
	}

	for _, src := range []model.Source{model.SourceWater, model.SourceEnergy} {
		f, ok := llmcontext.Facts(sources[src], def)
		if !ok {
			continue
		}
		for _, line := range f.Lines(string(src)) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	yearsCmd.Flags().BoolVar(&yearsFacts, "facts", false, "print the highest, lowest and average supply for the default year")
	rootCmd.AddCommand(yearsCmd)
}
