// Package watcher raises debounced change notifications for style
// files under a directory tree. Bursts of filesystem events (editor
// save, branch switch) collapse into one callback carrying every
// changed path.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"bennypowers.dev/csslens/internal/collections"
	"bennypowers.dev/csslens/internal/log"
	"bennypowers.dev/csslens/internal/observability"
)

// styleExtensions are the file types the watcher reports on.
var styleExtensions = collections.NewSet(".css", ".scss", ".sass")

// skipDirs are never watched or descended into.
var skipDirs = collections.NewSet("node_modules", "dist", "build")

// Watcher wraps fsnotify with recursive directory registration,
// style-file filtering and debounced batch delivery.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func(paths []string)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	closed  bool
	started bool

	done chan struct{}
}

// New constructs a watcher that calls onChange with the batch of
// changed paths once events have been quiet for the debounce interval.
func New(debounce time.Duration, onChange func(paths []string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		onChange: onChange,
		pending:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Watch registers root and every non-vendor directory below it, then
// starts the event loop.
func (w *Watcher) Watch(root string) error {
	if err := w.watchRecursive(root); err != nil {
		return err
	}
	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := filepath.Base(path)
		if path != root && (skipDirs.Has(name) || strings.HasPrefix(name, ".")) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Error("watcher: %s", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			name := filepath.Base(event.Name)
			if !skipDirs.Has(name) && !strings.HasPrefix(name, ".") {
				if err := w.watchRecursive(event.Name); err != nil {
					log.Warn("watcher: cannot watch new directory %s: %s", event.Name, err)
				}
			}
			return
		}
	}

	if !styleExtensions.Has(strings.ToLower(filepath.Ext(event.Name))) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.schedule(event.Name)
}

// schedule records a changed path and (re)arms the debounce timer.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	w.onChange(paths)
}

// Close stops the event loop and drops any pending batch.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	started := w.started
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	if started {
		<-w.done
	}
	return err
}
