// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when module files change.
//
// The watcher observes the category directories of every plugin. Events
// are filtered by the gather ignore rules and the known module extensions,
// then coalesced: the callback fires once per quiet period with every path
// that changed. Callers rebuild a fresh resolver in the callback, since
// resolver caches are never invalidated in place.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wirehook/wirehook/internal/gather"
	"github.com/wirehook/wirehook/internal/logging"
	"github.com/wirehook/wirehook/internal/module"
	"github.com/wirehook/wirehook/internal/plugin"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period used when Config.Debounce is unset.
const defaultDebounce = 300 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: already running")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Plugins are watched in their category directories.
		Plugins []plugin.Descriptor
		// Categories limits the watched directories. Empty means all.
		Categories []plugin.Category
		// Ignore drops events for ignored file names.
		Ignore gather.Ignore
		// Debounce is the quiet period before OnChange fires.
		Debounce time.Duration
		// OnChange receives the sorted absolute paths that changed. It never
		// runs concurrently with itself.
		OnChange func(ctx context.Context, changed []string) error
		// Logger receives watcher diagnostics.
		Logger *log.Logger
	}

	// Watcher monitors plugin category directories.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		dirs     map[string]bool
		debounce time.Duration
		logger   *log.Logger
		started  atomic.Bool
	}
)

// Dirs returns the category directories of the plugins that declare them,
// sorted.
func Dirs(plugins []plugin.Descriptor, categories []plugin.Category) []string {
	if len(categories) == 0 {
		categories = plugin.Categories()
	}
	var dirs []string
	for _, p := range plugins {
		for _, c := range categories {
			if p.Declares(c) {
				dirs = append(dirs, p.Dir(c))
			}
		}
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

// New creates a Watcher. A category directory that does not exist yet is
// picked up when it is created inside its plugin base.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		dirs:     make(map[string]bool),
		debounce: debounce,
		logger:   logging.Component(cfg.Logger, logging.PrefixWatch),
	}
	for _, dir := range Dirs(cfg.Plugins, cfg.Categories) {
		w.dirs[dir] = true
		if err := w.add(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Watched returns the directories currently registered with fsnotify.
func (w *Watcher) Watched() []string {
	list := w.fsw.WatchList()
	slices.Sort(list)
	return list
}

// add watches dir, or its parent when dir does not exist.
func (w *Watcher) add(dir string) error {
	target := dir
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		target = filepath.Dir(dir)
		if info, err := os.Stat(target); err != nil || !info.IsDir() {
			w.logger.Debug("not watching", "dir", dir)
			return nil
		}
	}
	if err := w.fsw.Add(target); err != nil {
		return fmt.Errorf("watch: add %s: %w", target, err)
	}
	return nil
}

// Run processes events until ctx ends. It returns nil on cancellation and
// an error when the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, retrying")
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 {
			return
		}

		w.logger.Info("change detected", "files", len(changed))
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("reload failed", "err", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if !w.relevant(evt) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if fatal(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// relevant reports whether evt concerns a module file in a watched
// category directory. A newly created category directory is registered
// and counts as a change.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if w.dirs[evt.Name] {
		if evt.Has(fsnotify.Create) {
			if err := w.fsw.Add(evt.Name); err != nil {
				w.logger.Warn("watch new directory", "dir", evt.Name, "err", err)
			}
		}
		return true
	}
	if !w.dirs[filepath.Dir(evt.Name)] {
		return false
	}

	name := filepath.Base(evt.Name)
	if ignored, rule := w.cfg.Ignore.Match(name); ignored {
		w.logger.Debug("ignored", "file", name, "rule", rule)
		return false
	}
	return module.ExtensionRank(filepath.Ext(name)) >= 0
}
