package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/mvp-joe/chalk-extract/internal/cache"
	"github.com/mvp-joe/chalk-extract/internal/config"
	"github.com/mvp-joe/chalk-extract/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for program extraction",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
extract solver programs from the project's Rust files.

The MCP server:
- Provides the chalk_extract and chalk_type_graph tools
- Resolves tool paths against the project directory
- Caches programs of unchanged files in memory
- Communicates via stdio (standard MCP transport)

Example:
  chalk-extract mcp -C path/to/crate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(ctx context.Context, cfg *config.Config) error {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory: %w", err)
	}

	extractor, closeFn, err := newMCPExtractor(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	server := mcp.NewServer(extractor, root, Version)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	slogctx.Info(ctx, "MCP server stopped")
	return nil
}

// newMCPExtractor builds the extraction pipeline for a long-running server,
// cached when the configuration allows it.
func newMCPExtractor(cfg *config.Config) (mcp.Extractor, func(), error) {
	var extractor mcp.Extractor = cfg.Extractor()
	if !cfg.Cache.Enabled {
		return extractor, func() {}, nil
	}

	pc, err := cache.NewProgramCache(cfg.Cache.MaxEntries)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewCachedExtractor(extractor, pc), pc.Close, nil
}
