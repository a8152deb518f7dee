// Package watcher re-runs extraction when Rust sources change.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	slogctx "github.com/veqryn/slog-context"
)

// DefaultDebounce is the quiet period before a batch of changes is reported.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports batches of changed .rs files under a set of paths.
// Directories are watched recursively; plain files are watched through their
// parent directory and only their own events are reported.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	files    map[string]bool // explicitly watched files
	roots    []string        // recursively watched directories

	callback func(files []string)
	ctx      context.Context
	cancel   context.CancelFunc

	pending   map[string]bool
	pendingMu sync.Mutex
	timer     *time.Timer
	timerMu   sync.Mutex
	stopOnce  sync.Once
	doneCh    chan struct{}
}

// New creates a watcher over paths. A zero debounce uses DefaultDebounce.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		debounce: debounce,
		files:    make(map[string]bool),
		pending:  make(map[string]bool),
		doneCh:   make(chan struct{}),
	}

	for _, p := range paths {
		if err := w.add(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		w.files[abs] = true
		if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	}

	w.roots = append(w.roots, abs)
	return w.addRecursive(context.Background(), abs)
}

// Start begins watching and calls callback, from a single goroutine, with
// each debounced batch of changed files in sorted order.
func (w *Watcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return fmt.Errorf("watcher callback is nil")
	}
	w.callback = callback
	w.ctx, w.cancel = context.WithCancel(ctx)

	go w.loop()
	return nil
}

// Stop ends watching and waits for the event loop to exit. Safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	fire := make(chan struct{}, 1)

	for {
		select {
		case <-w.ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 && w.underRoot(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(w.ctx, event.Name); err != nil {
						slogctx.Warn(w.ctx, "failed to watch new directory", "dir", event.Name, "error", err)
					}
				}
			}

			if !w.relevant(event) {
				continue
			}

			w.pendingMu.Lock()
			w.pending[event.Name] = true
			w.pendingMu.Unlock()
			w.resetTimer(fire)

		case <-fire:
			w.flush()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slogctx.Warn(w.ctx, "file watcher error", "error", err)
		}
	}
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	sort.Strings(files)
	w.callback(files)
}

// relevant keeps writes, creates, removes and renames of watched .rs files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if filepath.Ext(event.Name) != ".rs" {
		return false
	}
	return w.files[event.Name] || w.underRoot(event.Name)
}

func (w *Watcher) underRoot(path string) bool {
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) resetTimer(fire chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// addRecursive watches root and every directory below it except build
// output and VCS metadata.
func (w *Watcher) addRecursive(ctx context.Context, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slogctx.Warn(ctx, "error accessing path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			switch d.Name() {
			case "target", ".git", ".chalk":
				return filepath.SkipDir
			}
		}
		if err := w.watcher.Add(path); err != nil {
			slogctx.Warn(ctx, "failed to watch directory", "dir", path, "error", err)
		}
		return nil
	})
}
