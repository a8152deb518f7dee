package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/mvp-joe/chalk-extract/internal/ast"
	"github.com/mvp-joe/chalk-extract/internal/cache"
	"github.com/mvp-joe/chalk-extract/internal/config"
	"github.com/mvp-joe/chalk-extract/internal/discovery"
	"github.com/mvp-joe/chalk-extract/internal/extract"
	"github.com/mvp-joe/chalk-extract/internal/render"
	"github.com/mvp-joe/chalk-extract/internal/storage"
	"github.com/mvp-joe/chalk-extract/internal/watcher"
)

var errNoFiles = errors.New("no Rust files found")

type extractOptions struct {
	format  string
	watch   bool
	dbPath  string
	noCache bool
	quiet   bool
}

var extractOpts extractOptions

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file|dir>...",
	Short: "Extract the solver program of Rust files",
	Long: `Type-check each Rust file and print the program built from its struct
declarations. Directories are searched for .rs files using the discovery
settings.

Every program starts with the UnknownType record. A file that fails to
compile produces no program and makes the command exit non-zero.

Examples:
  chalk-extract extract src/lib.rs
  chalk-extract extract --format json src/
  chalk-extract extract --watch --db runs.db src/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd.Context(), cfg, args, extractOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOpts.format, "format", "f", "", "output format: text, json or yaml (default from config)")
	extractCmd.Flags().BoolVarP(&extractOpts.watch, "watch", "w", false, "re-extract files when they change")
	extractCmd.Flags().StringVar(&extractOpts.dbPath, "db", "", "SQLite database to record runs in (default from config)")
	extractCmd.Flags().BoolVar(&extractOpts.noCache, "no-cache", false, "disable the in-memory program cache")
	extractCmd.Flags().BoolVarP(&extractOpts.quiet, "quiet", "q", false, "suppress the progress bar")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(ctx context.Context, cfg *config.Config, paths []string, opts extractOptions, out, errOut io.Writer) error {
	files, err := discovery.Discover(paths, cfg.DiscoveryOptions())
	if err != nil {
		return fmt.Errorf("failed to discover files: %w", err)
	}
	if len(files) == 0 && !opts.watch {
		return fmt.Errorf("%w in %v", errNoFiles, paths)
	}

	s, err := newSession(cfg, opts, out, errOut)
	if err != nil {
		return err
	}
	defer s.Close()

	runErr := s.extractAll(ctx, files)
	if !opts.watch {
		return runErr
	}
	if runErr != nil {
		slogctx.Warn(ctx, "initial extraction had failures", "error", runErr)
	}
	return s.watch(ctx, paths)
}

// session holds what one extract invocation shares across files and
// watch rebuilds.
type session struct {
	extractor cache.Extractor
	cache     *cache.ProgramCache
	db        *sql.DB
	writer    *storage.ProgramWriter
	format    render.Format
	out       io.Writer
	progress  *progressReporter
}

func newSession(cfg *config.Config, opts extractOptions, out, errOut io.Writer) (*session, error) {
	formatName := opts.format
	if formatName == "" {
		formatName = cfg.Output.Format
	}
	format, err := render.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	s := &session{
		extractor: cfg.Extractor(),
		format:    format,
		out:       out,
		progress:  newProgressReporter(errOut, opts.quiet),
	}

	if cfg.Cache.Enabled && !opts.noCache {
		pc, err := cache.NewProgramCache(cfg.Cache.MaxEntries)
		if err != nil {
			return nil, err
		}
		s.cache = pc
		s.extractor = cache.NewCachedExtractor(s.extractor, pc)
	}

	dbPath := opts.dbPath
	if dbPath == "" {
		dbPath = cfg.Storage.DBPath
	}
	if dbPath != "" {
		db, err := storage.Open(dbPath)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.db = db
		s.writer = storage.NewProgramWriter(db)
	}

	return s, nil
}

func (s *session) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// extractAll renders each file's program in order. Files that do not
// compile are reported and skipped; the combined failure is returned at
// the end. Any other error stops the run.
func (s *session) extractAll(ctx context.Context, files []string) error {
	var result *multierror.Error
	multi := len(files) > 1

	s.progress.OnStart(len(files))
	defer s.progress.OnComplete()

	for i, file := range files {
		prog, err := s.extractor.Extract(ctx, file)
		s.progress.OnFileDone(file, err)
		if err != nil {
			if errors.Is(err, extract.ErrNoProgram) || errors.Is(err, fs.ErrNotExist) {
				slogctx.Error(ctx, "extraction failed", "file", file, "error", err)
				result = multierror.Append(result, err)
				continue
			}
			return err
		}

		if err := s.persist(ctx, file, prog); err != nil {
			return err
		}
		if err := s.write(file, prog, multi, i == 0); err != nil {
			return err
		}
	}

	return result.ErrorOrNil()
}

func (s *session) persist(ctx context.Context, file string, prog *ast.Program) error {
	if s.writer == nil {
		return nil
	}
	source, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	runID, err := s.writer.WriteRun(ctx, file, cache.ContentHash(source), prog)
	if err != nil {
		return err
	}
	slogctx.Debug(ctx, "stored run", "file", file, "run_id", runID)
	return nil
}

func (s *session) write(file string, prog *ast.Program, multi, first bool) error {
	if multi {
		switch s.format {
		case render.FormatText:
			if !first {
				fmt.Fprintln(s.out)
			}
			fmt.Fprintf(s.out, "// %s\n", file)
		case render.FormatYAML:
			fmt.Fprintf(s.out, "--- # %s\n", file)
		}
	}
	return render.Write(s.out, prog, s.format)
}

// watch re-extracts changed files until interrupted.
func (s *session) watch(ctx context.Context, paths []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(paths, watcher.DefaultDebounce)
	if err != nil {
		return err
	}

	err = w.Start(ctx, func(changed []string) {
		var existing []string
		for _, f := range changed {
			if _, err := os.Stat(f); err == nil {
				existing = append(existing, f)
			}
		}
		if len(existing) == 0 {
			return
		}
		if err := s.extractAll(ctx, existing); err != nil {
			slogctx.Warn(ctx, "re-extraction failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	slogctx.Info(ctx, "watching for changes", "paths", paths)
	<-ctx.Done()
	return w.Stop()
}
