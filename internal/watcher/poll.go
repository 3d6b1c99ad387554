package watcher

import (
	"os"
	"sync"
	"time"
)

// pollInterval matches the reference viewer's polling fallback: fast
// enough to feel live, slow enough not to burn CPU on an idle terminal.
const pollInterval = 50 * time.Millisecond

// PollWatcher is the fallback Watcher implementation: a ticker wakes on
// every interval and re-stats each registered file. Used when the
// platform cannot hand out a native readiness primitive (inotify instance
// limits, restricted sandboxes, unsupported filesystems).
type PollWatcher struct {
	mu     sync.Mutex
	sizes  map[string]int64
	events chan Event
	stop   chan struct{}
	done   chan struct{}
}

// NewPollWatcher constructs a polling Watcher and starts its ticker
// goroutine immediately.
func NewPollWatcher() *PollWatcher {
	w := &PollWatcher{
		sizes:  make(map[string]int64),
		events: make(chan Event, 64),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Add begins watching path for writes.
func (w *PollWatcher) Add(path string, knownSize int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sizes[path] = knownSize
	return nil
}

// Events returns the channel growth and error notifications arrive on.
func (w *PollWatcher) Events() <-chan Event {
	return w.events
}

// Close stops the polling goroutine.
func (w *PollWatcher) Close() error {
	close(w.stop)
	<-w.done
	return nil
}

func (w *PollWatcher) run() {
	defer close(w.done)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.pollOnce()
		}
	}
}

func (w *PollWatcher) pollOnce() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.sizes))
	for p := range w.sizes {
		paths = append(paths, p)
	}
	w.mu.Unlock()

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			w.events <- Event{Kind: Error, Path: path, Err: err}
			continue
		}
		w.mu.Lock()
		prev := w.sizes[path]
		size := info.Size()
		if size > prev {
			w.sizes[path] = size
		}
		w.mu.Unlock()
		if size > prev {
			w.events <- Event{Kind: Growth, Path: path, Size: size}
		}
	}
}
