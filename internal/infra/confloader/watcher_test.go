package confloader

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/xlremote-go/internal/telemetry/logger"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()), WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w := newTestWatcher(t)
	if err := w.Watch("/nonexistent/dir/config.yaml"); err == nil {
		t.Error("Watch() should fail for a missing directory")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}
	w.StartAsync()
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestWatcher_FileChange(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher(t)
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	var mu sync.Mutex
	var calls []string
	w.OnChange(func(path string) {
		mu.Lock()
		calls = append(calls, path)
		mu.Unlock()
	})
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	// Several quick writes and a write to an unrelated file.
	for _, level := range []string{"debug", "warn", "error"} {
		if err := os.WriteFile(configFile, []byte("log:\n  level: "+level+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(calls)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	// Allow any stray second callback to arrive.
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) == 0 {
		t.Fatal("OnChange() callback was not triggered within timeout")
	}
	for _, c := range calls {
		if c != filepath.Clean(configFile) {
			t.Errorf("callback path = %q, want %q", c, configFile)
		}
	}
}

func TestWatcher_FileCreate(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "new.yaml")

	w := newTestWatcher(t)
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	changed := make(chan string, 4)
	w.OnChange(func(path string) { changed <- path })
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("a: b"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Error("OnChange() callback was not triggered for a created file")
	}
}
