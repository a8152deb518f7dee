package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcputils "github.com/mvp-joe/chalk-extract/internal/mcp-utils"
	"github.com/mvp-joe/chalk-extract/internal/render"
)

// ExtractRequest is the chalk_extract argument set.
type ExtractRequest struct {
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
}

// AddChalkExtractTool registers the chalk_extract tool with an MCP server.
func AddChalkExtractTool(s *server.MCPServer, extractor Extractor, root string) {
	tool := mcp.NewTool(
		"chalk_extract",
		mcp.WithDescription("Type-check a Rust source file and return the solver program of its struct declarations. Every program starts with the UnknownType record; field types that cannot be expressed refer to it."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Rust file to extract, relative to the project root")),
		mcp.WithString("format",
			mcp.Description("Output format: text (default), json or yaml")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createChalkExtractHandler(extractor, root))
}

func createChalkExtractHandler(extractor Extractor, root string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]any); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req ExtractRequest
		if err := mcputils.BindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		format, err := render.ParseFormat(req.Format)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		path, err := resolvePath(root, req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		prog, err := extractor.Extract(ctx, path)
		if err != nil {
			return toolError(err)
		}

		out, err := render.String(prog, format)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(out), nil
	}
}
