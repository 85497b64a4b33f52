package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherTriggersReindex(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int64
	w, err := NewWatcher(WatcherConfig{
		Root: dir,
		Reindex: func(context.Context, string) error {
			calls.Add(1)
			return nil
		},
		DebounceMs: 20,
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx)

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "new.py"), []byte("def f():\n    pass\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("re-index never triggered")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcherIgnoresUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int64
	w, err := NewWatcher(WatcherConfig{
		Root: dir,
		Reindex: func(context.Context, string) error {
			calls.Add(1)
			return nil
		},
		DebounceMs: 20,
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx)

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not code"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("re-index triggered %d times for an unsupported file", calls.Load())
	}
}

func TestShouldExclude(t *testing.T) {
	w := &Watcher{excludePatterns: []string{"node_modules", "*.log"}}

	cases := []struct {
		path string
		want bool
	}{
		{"/proj/node_modules/lib.js", true},
		{"/proj/src/app.js", false},
		{"/proj/build.log", true},
		{"/proj/deep/node_modules/x/y.py", true},
	}

	for _, tc := range cases {
		if got := w.shouldExclude(tc.path); got != tc.want {
			t.Errorf("shouldExclude(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
