package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/home-capacity-viewer/internal/model"
	"github.com/sells-group/home-capacity-viewer/internal/tables"
)

var (
	processFormat string
	processOutput string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process the forecast tables and print them as JSON or YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("process"); err != nil {
			return err
		}

		env, err := initApp(cmd.Context(), false)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if processOutput != "" {
			f, err := os.Create(processOutput)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		return writeProcessed(out, processFormat, env.Processed)
	},
}

// writeProcessed renders every processed table as rows of cells. Values
// that are not finite are written as null.
func writeProcessed(w io.Writer, format string, p *model.Processed) error {
	doc := struct {
		Tables []*tables.Grid `json:"tables" yaml:"tables"`
	}{Tables: tables.All(p)}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(doc), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "close yaml encoder")
	default:
		return eris.Errorf("unsupported format %q (json or yaml)", format)
	}
}

func init() {
	processCmd.Flags().StringVar(&processFormat, "format", "json", "output format: json or yaml")
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(processCmd)
}
