package engine

import (
	"time"

	"github.com/kdelon/logscope/internal/bus"
	"github.com/kdelon/logscope/internal/watcher"
)

// StartTail begins following every open file for appended content. The
// pointer is not moved; as lines arrive, handleGrowth keeps its distance
// from the end of the stream constant. w is typically an
// FSWatcher, falling back to a PollWatcher when fsnotify could not be
// initialized; both satisfy the same interface so the engine does not
// care which it was given.
func (e *Engine) StartTail(w watcher.Watcher) error {
	e.mu.Lock()
	e.watcher = w
	e.tailing = true
	files := append([]*fileState(nil), e.files...)
	e.mu.Unlock()

	for _, fs := range files {
		if err := w.Add(fs.file.DisplayPath, fs.file.Size()); err != nil {
			return err
		}
	}

	go e.watchLoop(w)
	e.bus.Send(bus.TailFile{Tail: true})
	return nil
}

// StopTail stops keeping the pointer's distance from the end of the stream
// as it grows, without closing the watcher (new growth is instead reported
// as bus.PendingLines).
func (e *Engine) StopTail() {
	e.mu.Lock()
	e.tailing = false
	e.mu.Unlock()
	e.bus.Send(bus.TailFile{Tail: false})
}

func (e *Engine) watchLoop(w watcher.Watcher) {
	for ev := range w.Events() {
		switch ev.Kind {
		case watcher.Growth:
			e.handleGrowth(ev.Path, ev.Size)
		case watcher.Error:
			e.bus.Send(bus.FileError{Path: ev.Path, Err: ev.Err})
		}
	}
}

// handleGrowth rescans the break index for the grown file from its
// previously known size and, when tailing, advances the pointer to keep
// its distance from the end of the stream constant — so a pointer
// parked exactly at the last line keeps following new lines in, while a
// pointer parked five lines up stays five lines from the (new) end.
func (e *Engine) handleGrowth(path string, newSize int64) {
	e.mu.Lock()
	fs, ok := e.byPath[path]
	if !ok {
		e.mu.Unlock()
		return
	}
	if _, err := fs.file.Refresh(); err != nil {
		e.mu.Unlock()
		e.bus.Send(bus.FileError{Path: path, Err: err})
		return
	}
	previousCount := fs.lineCount()
	fromByteOffset := fs.breaks[len(fs.breaks)-1]
	distanceFromEnd := e.TotalLineCountLocked() - 1 - e.pointer
	e.mu.Unlock()

	// The last break is a synthetic EOF sentinel only when the file did not
	// end in '\n'; otherwise it is the start of the next line and stays.
	dropSentinel := false
	if fromByteOffset > 0 {
		last, err := fs.file.GetRaw(fromByteOffset-1, fromByteOffset)
		dropSentinel = err == nil && len(last) == 1 && last[0] != '\n'
	}

	fs.file.ScanLineBreaksFrom(fromByteOffset, func(batch []int64) {
		e.mu.Lock()
		if dropSentinel && len(fs.breaks) > 0 {
			fs.breaks = fs.breaks[:len(fs.breaks)-1] // drop stale EOF sentinel
		}
		for _, b := range batch {
			if n := len(fs.breaks); n == 0 || b > fs.breaks[n-1] {
				fs.breaks = append(fs.breaks, b)
			}
		}
		e.mu.Unlock()
	})

	e.mu.Lock()
	newCount := fs.lineCount()
	added := newCount - previousCount
	breaksSnapshot := append([]int64(nil), fs.breaks...)
	e.mu.Unlock()
	if added <= 0 {
		return
	}

	newTimestamps := make([]int64, added)
	fs.file.ScanTimestampsRange(fs.scanner, breaksSnapshot, previousCount, func(lineNo int, ts time.Time) {
		newTimestamps[lineNo-previousCount] = ts.UnixNano()
	})

	e.mu.Lock()
	fs.timestampsNS = append(fs.timestampsNS, newTimestamps...)
	e.rebuildMergeIndex()
	e.mu.Unlock()

	if !e.isTailing() {
		e.bus.Send(bus.PendingLines{Path: path, Count: added})
	}

	e.mu.Lock()
	if e.tailing {
		total := e.TotalLineCountLocked()
		e.pointer = total - 1 - distanceFromEnd
		if e.pointer < 0 {
			e.pointer = 0
		}
		if e.pointer >= total {
			e.pointer = total - 1
		}
	}
	e.mu.Unlock()
}

// TotalLineCountLocked is TotalLineCount for callers already holding mu.
func (e *Engine) TotalLineCountLocked() int {
	if e.merge {
		return len(e.mergeIndex)
	}
	if len(e.files) == 0 {
		return 0
	}
	return e.files[0].lineCount()
}
