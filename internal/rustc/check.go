package rustc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	slogctx "github.com/veqryn/slog-context"
)

// ErrRustcFailed is returned when rustc could not be started or crashed
// without reporting diagnostics.
var ErrRustcFailed = errors.New("rustc failed")

// Diagnostic is one message from rustc --error-format=json.
type Diagnostic struct {
	MessageType string           `json:"$message_type"`
	Message     string           `json:"message"`
	Level       string           `json:"level"`
	Code        *DiagnosticCode  `json:"code"`
	Spans       []DiagnosticSpan `json:"spans"`
	Rendered    string           `json:"rendered"`
}

// DiagnosticCode is an error code such as E0412.
type DiagnosticCode struct {
	Code string `json:"code"`
}

// DiagnosticSpan locates a diagnostic in the source.
type DiagnosticSpan struct {
	FileName    string `json:"file_name"`
	ByteStart   int    `json:"byte_start"`
	ByteEnd     int    `json:"byte_end"`
	LineStart   int    `json:"line_start"`
	LineEnd     int    `json:"line_end"`
	ColumnStart int    `json:"column_start"`
	ColumnEnd   int    `json:"column_end"`
	IsPrimary   bool   `json:"is_primary"`
}

// IsError reports whether the diagnostic fails compilation.
func (d Diagnostic) IsError() bool {
	return d.Level == "error" || strings.HasPrefix(d.Level, "error:")
}

// Primary returns the primary span, if any.
func (d Diagnostic) Primary() (DiagnosticSpan, bool) {
	for _, s := range d.Spans {
		if s.IsPrimary {
			return s, true
		}
	}
	return DiagnosticSpan{}, false
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Level)
	if d.Code != nil && d.Code.Code != "" {
		fmt.Fprintf(&b, "[%s]", d.Code.Code)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	if s, ok := d.Primary(); ok {
		fmt.Fprintf(&b, " (%s:%d:%d)", s.FileName, s.LineStart, s.ColumnStart)
	}
	return b.String()
}

// CompileError reports that the host compiler rejected the input file.
type CompileError struct {
	File        string
	Diagnostics []Diagnostic
}

// Errors returns only the error-level diagnostics.
func (e *CompileError) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range e.Diagnostics {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

func (e *CompileError) Error() string {
	errs := e.Errors()
	if len(errs) == 0 {
		return fmt.Sprintf("compilation of %s failed", e.File)
	}
	return fmt.Sprintf("compilation of %s failed with %d error(s): %s", e.File, len(errs), errs[0].String())
}

// Checker type-checks a single file with rustc and stops before code
// generation (--emit=metadata).
type Checker struct {
	CrateType string
	Edition   string
	ExtraArgs []string
	// Timeout bounds one rustc run; zero means no limit.
	Timeout time.Duration
}

// NewChecker returns a checker for library crates on the 2021 edition.
func NewChecker() *Checker {
	return &Checker{CrateType: "lib", Edition: "2021"}
}

// Args builds the rustc command line for file, writing metadata to outDir.
func (c *Checker) Args(tc Toolchain, file, outDir string) []string {
	args := []string{
		"--sysroot", tc.Sysroot,
		"--crate-name", CrateName(file),
		"--error-format=json",
		"--emit=metadata",
		"--out-dir", outDir,
	}
	if c.CrateType != "" {
		args = append(args, "--crate-type", c.CrateType)
	}
	if c.Edition != "" {
		args = append(args, "--edition", c.Edition)
	}
	args = append(args, c.ExtraArgs...)
	return append(args, file)
}

// Check runs rustc on file. It returns the diagnostics rustc printed and a
// *CompileError when any of them is an error or rustc exits non-zero.
func (c *Checker) Check(ctx context.Context, tc Toolchain, file string) ([]Diagnostic, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	outDir, err := os.MkdirTemp("", "chalk-extract-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := c.Args(tc, file, outDir)
	slogctx.Debug(ctx, "running rustc", "rustc", tc.Rustc, "args", args)

	cmd := exec.CommandContext(ctx, tc.Rustc, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	diags := ParseDiagnostics(stderr.Bytes())
	for _, d := range diags {
		if !d.IsError() {
			slogctx.Warn(ctx, "rustc diagnostic", "file", file, "diagnostic", d.String())
		}
	}

	if runErr != nil {
		if ctx.Err() != nil {
			return diags, fmt.Errorf("rustc on %s: %w", file, ctx.Err())
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return diags, fmt.Errorf("%w: %s: %v", ErrRustcFailed, tc.Rustc, runErr)
		}
		if len(diags) == 0 {
			msg := strings.TrimSpace(stderr.String())
			return diags, fmt.Errorf("%w: exit status %d: %s", ErrRustcFailed, exitErr.ExitCode(), msg)
		}
		return diags, &CompileError{File: file, Diagnostics: diags}
	}

	for _, d := range diags {
		if d.IsError() {
			return diags, &CompileError{File: file, Diagnostics: diags}
		}
	}
	return diags, nil
}

// ParseDiagnostics decodes the JSON diagnostic lines in rustc's stderr.
// Lines that are not diagnostics are skipped.
func ParseDiagnostics(stderr []byte) []Diagnostic {
	var diags []Diagnostic
	scanner := bufio.NewScanner(bytes.NewReader(stderr))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var d Diagnostic
		if err := json.Unmarshal(line, &d); err != nil {
			continue
		}
		if d.MessageType != "" && d.MessageType != "diagnostic" {
			continue
		}
		// Summary lines ("aborting due to previous error") carry no spans.
		if d.Level == "error" && len(d.Spans) == 0 && strings.HasPrefix(d.Message, "aborting due to") {
			continue
		}
		diags = append(diags, d)
	}
	return diags
}

// CrateName derives a valid crate name from a file path.
func CrateName(file string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	name := strings.Map(func(r rune) rune {
		if r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, base)
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}
