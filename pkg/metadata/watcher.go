package metadata

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher serves a catalog file and hot-reloads it when the file changes on
// disk, so a long-running editor process picks up schema exports without a
// restart. It implements Provider against whichever catalog loaded last; a
// reload that fails to parse keeps serving the previous catalog.
//
// Safe for concurrent use. Start should only be called once.
type Watcher struct {
	path     string
	logger   *slog.Logger
	fs       *fsnotify.Watcher
	current  atomic.Pointer[Catalog]
	onReload func(*Catalog)
}

// NewWatcher loads the catalog file and prepares a watcher for it. The
// optional onReload callback fires after each successful reload (completion
// caches typically invalidate there). A nil logger disables logging.
//
// The parent directory is watched rather than the file itself, because
// editors and exporters commonly replace files by rename.
func NewWatcher(path string, logger *slog.Logger, onReload func(*Catalog)) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	catalog, err := Load(path)
	if err != nil {
		return nil, err
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		logger:   logger,
		fs:       fs,
		onReload: onReload,
	}
	w.current.Store(catalog)
	return w, nil
}

// Catalog returns the most recently loaded catalog.
func (w *Watcher) Catalog() *Catalog {
	return w.current.Load()
}

// Start watches for file changes and reloads. Blocks until ctx is cancelled
// or the watcher is stopped; run it in a goroutine.
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Debug("watching catalog file", "path", w.path)

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", "error", err)

		case <-ctx.Done():
			w.logger.Debug("catalog watcher stopping")
			return
		}
	}
}

// handleEvent reloads the catalog when the watched file is written or
// replaced.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	catalog, err := Load(w.path)
	if err != nil {
		w.logger.Warn("catalog reload failed, keeping previous catalog",
			"path", w.path,
			"error", err)
		return
	}

	w.current.Store(catalog)
	w.logger.Info("catalog reloaded",
		"path", w.path,
		"sobjects", len(catalog.SObjects))

	if w.onReload != nil {
		w.onReload(catalog)
	}
}

// Stop stops watching and releases resources. Safe to call multiple times.
func (w *Watcher) Stop() error {
	return w.fs.Close()
}

// Provider delegation to the current catalog.

func (w *Watcher) SObjectNames(ctx context.Context, partial string) ([]string, error) {
	return w.Catalog().SObjectNames(ctx, partial)
}

func (w *Watcher) Fields(ctx context.Context, sobject string) ([]*FieldDescriptor, error) {
	return w.Catalog().Fields(ctx, sobject)
}

func (w *Watcher) Relationships(ctx context.Context, sobject string) ([]*RelationshipDescriptor, error) {
	return w.Catalog().Relationships(ctx, sobject)
}
