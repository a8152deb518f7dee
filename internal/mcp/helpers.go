package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvp-joe/chalk-extract/internal/extract"
)

var errOutsideRoot = errors.New("path is outside project root")

// resolvePath makes p absolute under root and rejects escapes.
func resolvePath(root, p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("path parameter is required")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(absRoot, p)
	}
	p = filepath.Clean(p)

	rel, err := filepath.Rel(absRoot, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errOutsideRoot, p)
	}
	return p, nil
}

// isUserError reports errors the caller can fix: bad input files and
// failed compilations. Everything else is a server fault.
func isUserError(err error) bool {
	return errors.Is(err, extract.ErrNoProgram) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, errOutsideRoot)
}

// toolError turns user errors into tool results and passes the rest through.
func toolError(err error) (*mcp.CallToolResult, error) {
	if isUserError(err) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
