// Package daemon watches a project root and re-indexes it when source files
// change. Events are debounced so a burst of writes triggers one re-index.
package daemon

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/heefoo/codesight/internal/parser"
	"github.com/heefoo/codesight/internal/util"
)

// ReindexFunc re-indexes the project rooted at root. The watcher serializes
// calls, so implementations see one re-index at a time per watcher.
type ReindexFunc func(ctx context.Context, root string) error

type Watcher struct {
	watcher         *fsnotify.Watcher
	root            string
	reindex         ReindexFunc
	excludePatterns []string
	debounce        time.Duration

	mu       sync.Mutex
	pending  map[string]time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

type WatcherConfig struct {
	Root            string
	Reindex         ReindexFunc
	ExcludePatterns []string
	DebounceMs      int
}

func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounceMs := cfg.DebounceMs
	if debounceMs == 0 {
		debounceMs = 100
	}

	return &Watcher{
		watcher:         fsWatcher,
		root:            cfg.Root,
		reindex:         cfg.Reindex,
		excludePatterns: cfg.ExcludePatterns,
		debounce:        time.Duration(debounceMs) * time.Millisecond,
		pending:         make(map[string]time.Time),
		stopCh:          make(chan struct{}),
	}, nil
}

// Watch blocks, dispatching debounced re-indexes until the context ends or
// Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := w.addDirRecursive(w.root); err != nil {
		log.Printf("Warning: failed to watch %s: %v", w.root, err)
	}

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
}

func (w *Watcher) addDirRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if w.shouldExclude(path) && path != dir {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) shouldExclude(path string) bool {
	for _, pattern := range w.excludePatterns {
		currentPath := path
		for currentPath != "." && currentPath != "/" {
			if util.MatchPattern(pattern, filepath.Base(currentPath)) {
				return true
			}
			currentPath = filepath.Dir(currentPath)
		}
	}
	return false
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.shouldExclude(event.Name) {
		return
	}

	// New directories need watches of their own.
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirRecursive(event.Name); err != nil {
				log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
			}
			return
		}
	}

	if parser.DetectLanguage(event.Name) == "" {
		return
	}

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write,
		event.Op&fsnotify.Create == fsnotify.Create,
		event.Op&fsnotify.Remove == fsnotify.Remove,
		event.Op&fsnotify.Rename == fsnotify.Rename:
		w.queue(event.Name)
	}
}

func (w *Watcher) queue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

// processPending triggers one project re-index when every queued event has
// been quiet for at least the debounce window.
func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	settled := len(w.pending) > 0
	for _, queuedAt := range w.pending {
		if now.Sub(queuedAt) < w.debounce {
			settled = false
			break
		}
	}
	if settled {
		w.pending = make(map[string]time.Time)
	}
	w.mu.Unlock()

	if !settled {
		return
	}

	if err := w.reindex(ctx, w.root); err != nil {
		log.Printf("Warning: re-index of %s failed: %v", w.root, err)
	} else {
		log.Printf("Re-indexed: %s", w.root)
	}
}
