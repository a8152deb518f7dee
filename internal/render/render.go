// Package render writes programs for people and tools.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/chalk-extract/internal/ast"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: text, json, yaml)", s)
	}
}

// Write renders prog to w.
func Write(w io.Writer, prog *ast.Program, format Format) error {
	switch format {
	case FormatText, "":
		return writeText(w, prog)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(prog))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(prog)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// String renders prog to a string.
func String(prog *ast.Program, format Format) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, prog, format); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// writeText emits one declaration per line in solver surface syntax.
func writeText(w io.Writer, prog *ast.Program) error {
	if prog == nil {
		return nil
	}
	for _, item := range prog.Items {
		if _, err := fmt.Fprintln(w, itemText(item)); err != nil {
			return err
		}
	}
	return nil
}

func itemText(item ast.Item) string {
	switch it := item.(type) {
	case *ast.StructDefn:
		if len(it.Fields) == 0 {
			return fmt.Sprintf("struct %s { }", it.Name)
		}
		fields := make([]string, len(it.Fields))
		for i, f := range it.Fields {
			fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Ty)
		}
		return fmt.Sprintf("struct %s { %s }", it.Name, strings.Join(fields, ", "))
	case *ast.TraitDefn:
		return fmt.Sprintf("trait %s { }", it.Name)
	case *ast.ImplDefn:
		if it.Trait != nil && it.SelfTy != nil {
			return fmt.Sprintf("impl %s for %s { }", it.Trait, it.SelfTy)
		}
		return fmt.Sprintf("impl %s { }", it.Name)
	default:
		return fmt.Sprintf("// unsupported item %s", item.ItemName())
	}
}
