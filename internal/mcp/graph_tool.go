package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcputils "github.com/mvp-joe/chalk-extract/internal/mcp-utils"
	"github.com/mvp-joe/chalk-extract/internal/typegraph"
)

// TypeGraphRequest is the chalk_type_graph argument set.
type TypeGraphRequest struct {
	Path string `json:"path"`
}

// TypeGraphResponse describes how a file's records reference each other.
type TypeGraphResponse = typegraph.Report

// AddChalkTypeGraphTool registers the chalk_type_graph tool with an MCP server.
func AddChalkTypeGraphTool(s *server.MCPServer, extractor Extractor, root string) {
	tool := mcp.NewTool(
		"chalk_type_graph",
		mcp.WithDescription("Extract a Rust file and report which structs reference which through their field types, a dependencies-first declaration order, and any reference cycles."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Rust file to analyse, relative to the project root")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createChalkTypeGraphHandler(extractor, root))
}

func createChalkTypeGraphHandler(extractor Extractor, root string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]any); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req TypeGraphRequest
		if err := mcputils.BindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		path, err := resolvePath(root, req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		prog, err := extractor.Extract(ctx, path)
		if err != nil {
			return toolError(err)
		}

		g, err := typegraph.Build(prog)
		if err != nil {
			return nil, err
		}

		resp, err := g.Report()
		if err != nil {
			return nil, err
		}

		return marshalToolResponse(resp)
	}
}
