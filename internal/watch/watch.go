// Package watch re-runs a handler when a raw dataset file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/KaramelBytes/agriassist-cli/internal/dataset"
	"github.com/KaramelBytes/agriassist-cli/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// Handler is invoked with the kind and path of a changed input file.
type Handler func(ctx context.Context, kind dataset.Kind, path string)

// Watcher observes one dataset directory.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu      sync.Mutex
	lastMod map[string]time.Time
	kindMu  map[dataset.Kind]*sync.Mutex
}

// New starts watching dir.
func New(dir string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	kindMu := make(map[dataset.Kind]*sync.Mutex)
	for _, k := range dataset.Kinds() {
		kindMu[k] = &sync.Mutex{}
	}
	return &Watcher{
		dir:     dir,
		watcher: fw,
		logger:  logger.With("component", "watch", "dir", dir),
		lastMod: make(map[string]time.Time),
		kindMu:  kindMu,
	}, nil
}

// Run dispatches change events to h until ctx is cancelled or the watcher
// fails. Runs for the same kind never overlap; Run waits for in-flight
// handlers before returning.
func (w *Watcher) Run(ctx context.Context, h Handler) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			kind, path, ok := w.accept(event)
			if !ok {
				continue
			}
			w.logger.Info("input changed", "kind", string(kind), "file", path)
			wg.Add(1)
			go func() {
				defer wg.Done()
				mu := w.kindMu[kind]
				mu.Lock()
				defer mu.Unlock()
				if ctx.Err() != nil {
					return
				}
				h(ctx, kind, path)
			}()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.dir, err)
		}
	}
}

// accept filters events down to writes of known input files whose
// modification time moved forward.
func (w *Watcher) accept(event fsnotify.Event) (dataset.Kind, string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return "", "", false
	}
	kind, ok := dataset.KindForFile(event.Name)
	if !ok {
		return "", "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", "", false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !info.ModTime().After(w.lastMod[event.Name]) {
		return "", "", false
	}
	w.lastMod[event.Name] = info.ModTime()
	return kind, event.Name, true
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
