package watcher

import (
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FSWatcher is the event-driven Watcher implementation, backed by the
// platform's native readiness primitive (inotify, kqueue, or
// ReadDirectoryChanges) through fsnotify. fsnotify only signals "this path
// changed" — it carries no offsets — so on every Write event the watcher
// re-stats the file and reports its new size; any bytes appended between
// two coalesced events are still captured because the comparison is
// always against the last known size, never against the event count.
type FSWatcher struct {
	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	sizes  map[string]int64
	events chan Event
	done   chan struct{}
}

// NewFSWatcher constructs an event-driven Watcher. It returns an error
// when the platform cannot hand out a new inotify/kqueue instance (e.g.
// the per-user instance limit has been reached); callers should fall back
// to NewPollWatcher in that case.
func NewFSWatcher() (*FSWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &FSWatcher{
		fsw:    fsw,
		sizes:  make(map[string]int64),
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Add begins watching path for writes.
func (w *FSWatcher) Add(path string, knownSize int64) error {
	w.mu.Lock()
	w.sizes[path] = knownSize
	w.mu.Unlock()
	return w.fsw.Add(path)
}

// Events returns the channel growth and error notifications arrive on.
func (w *FSWatcher) Events() <-chan Event {
	return w.events
}

// Close stops the underlying fsnotify watcher and its dispatch goroutine.
func (w *FSWatcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *FSWatcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reportGrowth(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.events <- Event{Kind: Error, Err: err}
		}
	}
}

func (w *FSWatcher) reportGrowth(path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.events <- Event{Kind: Error, Path: path, Err: err}
		return
	}

	w.mu.Lock()
	prev := w.sizes[path]
	size := info.Size()
	if size <= prev {
		w.mu.Unlock()
		return
	}
	w.sizes[path] = size
	w.mu.Unlock()

	w.events <- Event{Kind: Growth, Path: path, Size: size}
}
