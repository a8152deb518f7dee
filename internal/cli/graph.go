package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/chalk-extract/internal/config"
	"github.com/mvp-joe/chalk-extract/internal/render"
	"github.com/mvp-joe/chalk-extract/internal/typegraph"
)

var graphFormat string

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Show how the structs of a file reference each other",
	Long: `Extract a Rust file and print, for each struct, the structs its fields
refer to, followed by a declaration order with dependencies first. When the
structs reference each other in a cycle no order exists and the cycles are
listed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraph(cmd.Context(), cfg, args[0], graphFormat, cmd.OutOrStdout())
	},
}

func init() {
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(ctx context.Context, cfg *config.Config, file, formatName string, out io.Writer) error {
	format, err := render.ParseFormat(formatName)
	if err != nil {
		return err
	}

	prog, err := cfg.Extractor().Extract(ctx, file)
	if err != nil {
		return err
	}

	g, err := typegraph.Build(prog)
	if err != nil {
		return err
	}
	report, err := g.Report()
	if err != nil {
		return err
	}

	switch format {
	case render.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case render.FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	uses := make(map[string][]string)
	for _, e := range report.Edges {
		uses[e.From] = append(uses[e.From], fmt.Sprintf("%s (%s)", e.To, e.Field))
	}
	for _, name := range report.Structs {
		if deps := uses[name]; len(deps) > 0 {
			fmt.Fprintf(out, "%s -> %s\n", name, strings.Join(deps, ", "))
		} else {
			fmt.Fprintf(out, "%s\n", name)
		}
	}

	fmt.Fprintln(out)
	if report.Order != nil {
		fmt.Fprintf(out, "Order: %s\n", strings.Join(report.Order, ", "))
	}
	for _, cycle := range report.Cycles {
		fmt.Fprintf(out, "Cycle: %s\n", strings.Join(cycle, " -> "))
	}
	return nil
}
