// Package watch reports changed files through fsnotify. Events are collected
// on a background goroutine and drained by the main loop, so callers never
// touch GPU state off the render thread.
package watch

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resonance/internal/logging"
)

var ErrClosed = errors.New("watcher already closed")

// Watcher collects paths of files that were written or recreated.
type Watcher struct {
	fsnotify *fsnotify.Watcher

	mu       sync.Mutex
	changed  map[string]time.Time
	files    map[string]struct{}
	isClosed bool
	done     chan struct{}
	wg       sync.WaitGroup
}

func New() (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsnotify: fsWatch,
		changed:  make(map[string]time.Time),
		files:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// AddFile watches a single file. The parent directory is what fsnotify
// follows, since editors commonly replace files instead of writing them.
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isClosed {
		return ErrClosed
	}
	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	watched := false
	for f := range w.files {
		if filepath.Dir(f) == dir {
			watched = true
			break
		}
	}
	if !watched {
		if err := w.fsnotify.Add(dir); err != nil {
			return err
		}
	}
	w.files[abs] = struct{}{}
	return nil
}

// Drain returns the watched files that changed at least settle ago and
// forgets them. Files still being written stay queued for a later call.
func (w *Watcher) Drain(settle time.Duration) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	var out []string
	for path, at := range w.changed {
		if now.Sub(at) < settle {
			continue
		}
		out = append(out, path)
		delete(w.changed, path)
	}
	return out
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(e.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			if _, ok := w.files[abs]; ok {
				w.changed[abs] = time.Now()
			}
			w.mu.Unlock()

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			logging.Error("File watcher: %v", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.isClosed {
		w.mu.Unlock()
		return nil
	}
	w.isClosed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fsnotify.Close()
	w.wg.Wait()
	return err
}
