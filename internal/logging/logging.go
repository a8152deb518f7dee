// Package logging builds the process logger. Library code never holds a
// logger; it logs through the context with slogctx.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// Options selects the handler.
type Options struct {
	Level string // debug, info, warn or error
	Color bool
	JSON  bool
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewHandler returns a context-aware handler writing to w.
func NewHandler(w io.Writer, opts Options) (slog.Handler, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var inner slog.Handler
	if opts.JSON {
		inner = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		inner = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    !opts.Color,
		})
	}

	return slogctx.NewHandler(inner, &slogctx.HandlerOptions{}), nil
}

// Setup installs the logger as the slog default and returns ctx carrying it.
func Setup(ctx context.Context, w io.Writer, opts Options) (context.Context, error) {
	handler, err := NewHandler(w, opts)
	if err != nil {
		return ctx, err
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return slogctx.NewCtx(ctx, logger), nil
}
