package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/chalk-extract/internal/config"
)

// toolchainCmd represents the toolchain command
var toolchainCmd = &cobra.Command{
	Use:   "toolchain",
	Short: "Show the Rust toolchain that extraction will use",
	Long: `Resolve the toolchain the same way extraction does and print where it
was found. Resolution order: toolchain.sysroot, RUSTUP_HOME with
RUSTUP_TOOLCHAIN, MULTIRUST_HOME with MULTIRUST_TOOLCHAIN, RUST_SYSROOT,
then rustc --print sysroot when probing is enabled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToolchain(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(toolchainCmd)
}

func runToolchain(ctx context.Context, cfg *config.Config, out io.Writer) error {
	tc, err := cfg.Locator().Locate(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Sysroot: %s\n", tc.Sysroot)
	fmt.Fprintf(out, "Rustc:   %s\n", tc.Rustc)
	fmt.Fprintf(out, "Source:  %s\n", tc.Source)
	return nil
}
