// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/wirehook/wirehook/internal/config"
	"github.com/wirehook/wirehook/internal/gather"
	"github.com/wirehook/wirehook/internal/plugin"

	"github.com/fsnotify/fsnotify"
)

func testPlugins(t *testing.T) []plugin.Descriptor {
	t.Helper()
	base := t.TempDir()
	p1 := filepath.Join(base, "plugins", "p1")
	for _, dir := range []string{filepath.Join(base, "handlers"), filepath.Join(p1, "services")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll(%s): %v", dir, err)
		}
	}
	return []plugin.Descriptor{
		{Name: plugin.ProjectName, Rank: 0, Base: base, Capabilities: plugin.Categories()},
		{Name: "p1", Rank: 1, Base: p1, Capabilities: []plugin.Category{plugin.Service}},
	}
}

func TestDirs(t *testing.T) {
	t.Parallel()

	plugins := []plugin.Descriptor{
		{Name: plugin.ProjectName, Base: "/proj", Capabilities: plugin.Categories()},
		{Name: "p1", Rank: 1, Base: "/opt/p1", Capabilities: []plugin.Category{plugin.Service}},
	}

	got := Dirs(plugins, []plugin.Category{plugin.Handler, plugin.Service})
	want := []string{"/opt/p1/services", "/proj/handlers", "/proj/services"}
	if !slices.Equal(got, want) {
		t.Errorf("Dirs() = %v, want %v", got, want)
	}
	if n := len(Dirs(plugins, nil)); n != 5 {
		t.Errorf("len(Dirs(all)) = %d, want 5", n)
	}
}

func TestWatcher_Relevant(t *testing.T) {
	t.Parallel()

	plugins := testPlugins(t)
	w, err := New(Config{Plugins: plugins, Ignore: gather.NewIgnore(config.DefaultConfig().Ignore)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.fsw.Close() })

	project, p1 := plugins[0].Base, plugins[1].Base
	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(project, "handlers", "getPing.cue"), true},
		{filepath.Join(p1, "services", "db.yaml"), true},
		{filepath.Join(project, "handlers", "README.md"), false},
		{filepath.Join(project, "handlers", "getPing.test.cue"), false},
		{filepath.Join(project, "wirehook.cue"), false},
		{filepath.Join(p1, "handlers", "getPing.cue"), false},
		{filepath.Join(project, "routes"), true},
	}
	for _, tt := range tests {
		if got := w.relevant(fsnotify.Event{Name: tt.path, Op: fsnotify.Write}); got != tt.want {
			t.Errorf("relevant(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_Debounce(t *testing.T) {
	t.Parallel()

	plugins := testPlugins(t)
	var (
		mu    sync.Mutex
		calls [][]string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Plugins:  plugins,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, changed)
			if len(calls) == 1 {
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	handlers := filepath.Join(plugins[0].Base, "handlers")
	for _, name := range []string{"getPing.cue", "getUser.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(handlers, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
	}
	time.Sleep(300 * time.Millisecond)
	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	want := []string{filepath.Join(handlers, "getPing.cue"), filepath.Join(handlers, "getUser.json")}
	if !slices.Equal(calls[0], want) {
		t.Errorf("changed = %v, want %v", calls[0], want)
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Plugins: testPlugins(t)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want %v", err, ErrAlreadyRunning)
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestWatcher_MissingCategoryDirWatchesBase(t *testing.T) {
	t.Parallel()

	plugins := testPlugins(t)
	w, err := New(Config{Plugins: plugins[:1], Categories: []plugin.Category{plugin.Route}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.fsw.Close() })

	if got := w.Watched(); !slices.Equal(got, []string{plugins[0].Base}) {
		t.Errorf("Watched() = %v, want the plugin base", got)
	}
}
