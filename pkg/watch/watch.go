// Package watch implements the engine's watch mode: an fsnotify watcher
// over the directories holding the driver's input files, re-running a
// single-file expansion whenever one of them changes on disk.
package watch

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/autosv/autosv/pkg/logging"
)

// Callback is invoked with the path of a source file that changed.
type Callback func(path string)

// Watcher watches the parent directories of a fixed file set and
// invokes a callback on writes to any of them.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]bool
	logger   logging.Logger
	done     chan struct{}
}

// New creates a Watcher over the given files' containing directories.
// Events for any other file in those directories are ignored.
func New(files []string, logger logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNoOp()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fsw: fsw, files: make(map[string]bool, len(files)), logger: logger, done: make(chan struct{})}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			logger.Warn("watch: failed to add directory %s: %v", dir, err)
		}
	}
	return w, nil
}

// Run blocks, invoking cb for every write or create event on a watched file,
// until Close is called.
func (w *Watcher) Run(cb Callback) {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				abs = ev.Name
			}
			if w.files[abs] {
				w.logger.Info("watch: %s changed", abs)
				cb(abs)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch: error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
