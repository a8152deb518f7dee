package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	slogctx "github.com/veqryn/slog-context"

	"github.com/mvp-joe/chalk-extract/internal/ast"
)

// Extractor produces the program of one Rust file.
type Extractor interface {
	Extract(ctx context.Context, path string) (*ast.Program, error)
}

// Server exposes extraction as MCP tools over stdio.
type Server struct {
	mcp       *server.MCPServer
	extractor Extractor
	root      string
}

// NewServer registers the chalk tools. Relative tool paths resolve against
// root and may not escape it.
func NewServer(extractor Extractor, root, version string) *Server {
	s := server.NewMCPServer(
		"chalk-extract",
		version,
		server.WithToolCapabilities(true),
	)

	AddChalkExtractTool(s, extractor, root)
	AddChalkTypeGraphTool(s, extractor, root)

	return &Server{mcp: s, extractor: extractor, root: root}
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve blocks until stdin closes, a signal arrives or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		slogctx.Info(ctx, "starting MCP server on stdio", "root", s.root)
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		slogctx.Info(ctx, "received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
