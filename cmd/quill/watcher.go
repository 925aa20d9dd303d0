package main

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-checks scripts when they change on disk
type Watcher struct {
	watcher    *fsnotify.Watcher
	configPath string
	scripts    map[string]bool // absolute paths
	onChange   func(path string)
	log        *cliLogger

	// Track last change per file to debounce rapid writes
	mu         sync.Mutex
	lastChange map[string]time.Time
	done       chan struct{}
}

// NewWatcher creates a watcher for the given scripts. onChange is called
// from the watcher goroutine with the script's absolute path.
func NewWatcher(scripts []string, configPath string, onChange func(path string), log *cliLogger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:    fsWatcher,
		configPath: configPath,
		scripts:    make(map[string]bool, len(scripts)),
		onChange:   onChange,
		log:        log,
		lastChange: make(map[string]time.Time),
		done:       make(chan struct{}),
	}
	for _, s := range scripts {
		abs, err := filepath.Abs(s)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		w.scripts[abs] = true
	}
	return w, nil
}

// collectDirs returns the unique directories holding the watched files.
// Directories are watched rather than files so that editors which save by
// rename are still seen.
func (w *Watcher) collectDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for path := range w.scripts {
		add(filepath.Dir(path))
	}
	if w.configPath != "" {
		add(filepath.Dir(w.configPath))
	}
	return dirs
}

// Start begins watching for file changes
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.collectDirs() {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.log.Debugf("watching %s", dir)
	}

	go w.eventLoop(ctx)
	return nil
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// eventLoop processes file system events
func (w *Watcher) eventLoop(ctx context.Context) {
	defer close(w.done)

	// Debounce duration - wait for rapid changes to settle
	const debounce = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only handle write and create events
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			path, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}

			w.mu.Lock()
			if time.Since(w.lastChange[path]) < debounce {
				w.mu.Unlock()
				continue
			}
			w.lastChange[path] = time.Now()
			w.mu.Unlock()

			w.handleFileChange(path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Errorf("watcher error: %v", err)
		}
	}
}

// handleFileChange processes a file change event
func (w *Watcher) handleFileChange(path string) {
	if w.configPath != "" && path == w.configPath {
		w.log.Infof("config changed: %s (restart to apply)", path)
		return
	}
	if !w.scripts[path] {
		return
	}
	w.log.Debugf("changed: %s", path)
	w.onChange(path)
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
