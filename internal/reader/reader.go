// Package reader implements the asynchronous line-fetch worker: requests
// to read a byte range from a log file are queued, deduplicated against
// any identical request already pending, and serviced one at a time on a
// background goroutine so the caller's hot path never blocks on I/O.
package reader

import (
	"sync"
	"time"

	"github.com/kdelon/logscope/internal/logfile"
)

// Key identifies a single requested line by its file and byte range.
type Key struct {
	File  *logfile.File
	Start int64
	End   int64
}

// Result is delivered once a requested line has been read from disk.
type Result struct {
	Key  Key
	Line string
	Err  error
}

const queueCapacity = 1000
const pollInterval = 200 * time.Millisecond

// Reader serializes line reads onto a single background goroutine and
// reports completions through Results. At most one outstanding request
// exists per Key at any time — a duplicate Request for a Key already
// queued or in flight is silently dropped.
type Reader struct {
	Results chan Result

	requests chan Key
	mu       sync.Mutex
	pending  map[Key]struct{}
	stop     chan struct{}
	done     chan struct{}
}

// New starts the background worker goroutine and returns a ready Reader.
func New() *Reader {
	r := &Reader{
		Results:  make(chan Result, queueCapacity),
		requests: make(chan Key, queueCapacity),
		pending:  make(map[Key]struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go r.run()
	return r
}

// Request enqueues a line read for key unless one is already pending or
// in flight. Safe to call from any goroutine.
func (r *Reader) Request(key Key) {
	select {
	case <-r.stop:
		return
	default:
	}

	r.mu.Lock()
	if _, exists := r.pending[key]; exists {
		r.mu.Unlock()
		return
	}
	r.pending[key] = struct{}{}
	r.mu.Unlock()

	select {
	case r.requests <- key:
	default:
		// queue is full; drop the pending marker so a future render pass
		// can re-request once the backlog drains.
		r.mu.Lock()
		delete(r.pending, key)
		r.mu.Unlock()
	}
}

// Stop signals the worker to finish any in-flight read and exit, then
// blocks until it has done so.
func (r *Reader) Stop() {
	close(r.stop)
	<-r.done
}

func (r *Reader) run() {
	defer close(r.done)
	for {
		select {
		case <-r.stop:
			return
		case key := <-r.requests:
			r.service(key)
			r.mu.Lock()
			delete(r.pending, key)
			r.mu.Unlock()
		case <-time.After(pollInterval):
			// wake periodically so Stop is observed promptly even with no
			// requests in flight.
		}
	}
}

func (r *Reader) service(key Key) {
	line, err := key.File.GetLine(key.Start, key.End)
	select {
	case r.Results <- Result{Key: key, Line: line, Err: err}:
	case <-r.stop:
	}
}
