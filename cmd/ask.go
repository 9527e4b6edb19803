package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/home-capacity-viewer/internal/query"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the water and energy forecasts",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("ask"); err != nil {
			return err
		}
		if err := cfg.ValidateLLM(); err != nil {
			return err
		}

		env, err := initApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		handler, err := newAnswerer(env.Processed, nil)
		if err != nil {
			return err
		}

		answer := handler.Answer(cmd.Context(), strings.Join(args, " "))
		return printParagraphs(cmd.OutOrStdout(), answer)
	},
}

func printParagraphs(w io.Writer, answer string) error {
	for i, p := range query.Paragraphs(answer) {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(askCmd)
}
