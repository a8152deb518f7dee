package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/chalk-extract/internal/config"
	"github.com/mvp-joe/chalk-extract/internal/rustc"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Type-check a Rust file without extracting it",
	Long: `Locate the toolchain and run rustc on a single file, printing every
diagnostic. The check runs even when check.enabled is false in the
configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(ctx context.Context, cfg *config.Config, file string, out io.Writer) error {
	tc, err := cfg.Locator().Locate(ctx)
	if err != nil {
		return err
	}

	checker := cfg.Checker()
	if checker == nil {
		checker = rustc.NewChecker()
	}

	diags, err := checker.Check(ctx, tc, file)
	for _, d := range diags {
		fmt.Fprintln(out, d.String())
	}
	if err != nil {
		var compileErr *rustc.CompileError
		if errors.As(err, &compileErr) {
			return fmt.Errorf("%s: %d error(s)", file, len(compileErr.Errors()))
		}
		return err
	}

	fmt.Fprintf(out, "✓ %s: ok (%d warning(s))\n", file, len(diags))
	return nil
}
