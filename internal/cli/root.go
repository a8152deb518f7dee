package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/chalk-extract/internal/config"
	"github.com/mvp-joe/chalk-extract/internal/logging"
)

var (
	projectDir string
	logLevel   string
	verbose    bool

	// cfg is loaded once per invocation before any subcommand runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chalk-extract",
	Short: "Extract trait-solver programs from Rust source",
	Long: `chalk-extract type-checks Rust files with rustc and lowers their struct
declarations into the program model consumed by the trait solver.

Configuration is read from .chalk/config.yml in the project directory and
CHALK_* environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "project directory holding .chalk/config.yml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level=debug)")
}

// setup loads configuration and installs the logger on the command context.
func setup(cmd *cobra.Command, args []string) error {
	if cmd == versionCmd {
		return nil
	}

	loaded, err := config.LoadConfigFromDir(projectDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := loaded.LogOptions()
	if logLevel != "" {
		opts.Level = logLevel
	}
	if verbose {
		opts.Level = "debug"
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, err = logging.Setup(ctx, cmd.ErrOrStderr(), opts)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	cmd.SetContext(ctx)

	cfg = loaded
	return nil
}
