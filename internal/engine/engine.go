// Package engine is the heart of logscope: it owns the open log files,
// their line-break and merge indexes, the line/text/render/suggestion
// caches, and every pointer-, search- and tail-related operation a
// terminal front end drives it through. It never touches a terminal
// directly — all of its output is either a return value or a bus.Message.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kdelon/logscope/internal/bus"
	"github.com/kdelon/logscope/internal/format"
	"github.com/kdelon/logscope/internal/logfile"
	"github.com/kdelon/logscope/internal/reader"
	"github.com/kdelon/logscope/internal/timestamp"
	"github.com/kdelon/logscope/internal/watcher"
)

const (
	lineCacheCapacity       = 10000
	textCacheCapacity       = 1000
	renderCacheCapacity     = 1000
	suggestionCacheCapacity = 10000
)

// fileState is everything the engine tracks about one open log file.
type fileState struct {
	file      *logfile.File
	breaks    []int64 // ascending line-start offsets; breaks[len-1] == current known size
	scanner   *timestamp.Scanner
	formatter *format.Parser
	timestampsNS []int64 // unix nanoseconds per line, parallel to breaks[:len-1]

	scannedBytes int64 // high-water byte offset reached by the initial line-break scan
}

func (fs *fileState) lineCount() int {
	if len(fs.breaks) == 0 {
		return 0
	}
	return len(fs.breaks) - 1
}

// mergeEntry is one row of the global merge index: a line in a specific
// file, in ascending timestamp order across every open file.
type mergeEntry struct {
	timestampNS int64
	lineNo      int
	file        *logfile.File
}

type lineKey struct {
	file       *logfile.File
	start, end int64
}

type textKey struct {
	file       *logfile.File
	start, end int64
	abbreviate bool
}

// renderKey identifies one pre-rendered display row: its span, whether it
// is the current pointer row, and the find text active when it was
// rendered. Changing the find text invalidates every render cache entry
// (entries are keyed by it) without touching the line or text caches,
// which depend on neither pointer position nor find text.
type renderKey struct {
	file    *logfile.File
	start   int64
	end     int64
	pointer bool
	find    string
}

// Engine is the central coordinator. All exported methods are safe for
// concurrent use unless documented otherwise.
type Engine struct {
	mu    sync.RWMutex
	files []*fileState
	byPath map[string]*fileState
	merge bool // true once more than one file is open: addressing goes through mergeIndex

	mergeIndex []mergeEntry

	pointer int // absolute line number in the current addressing space
	tailing bool

	findText      string
	caseSensitive bool
	useRegex      bool

	lineCache   *lru.Cache[lineKey, string]
	textCache   *lru.Cache[textKey, format.Styled]
	renderCache *lru.Cache[renderKey, format.Styled]
	suggestIdx  *lru.Cache[string, string]

	reader  *reader.Reader
	watcher watcher.Watcher
	bus     *bus.Queue

	totalSize int64 // sum of every open file's size at scan start, for ScanProgress fractions
}

// New constructs an Engine with empty caches and no open files.
func New() *Engine {
	lineCache, _ := lru.New[lineKey, string](lineCacheCapacity)
	textCache, _ := lru.New[textKey, format.Styled](textCacheCapacity)
	renderCache, _ := lru.New[renderKey, format.Styled](renderCacheCapacity)
	suggestIdx, _ := lru.New[string, string](suggestionCacheCapacity)

	return &Engine{
		byPath:      make(map[string]*fileState),
		lineCache:   lineCache,
		textCache:   textCache,
		renderCache: renderCache,
		suggestIdx:  suggestIdx,
		reader:      reader.New(),
		bus:         bus.NewQueue(),
	}
}

// Bus returns the queue the engine posts notifications to.
func (e *Engine) Bus() *bus.Queue { return e.bus }

// Close stops the background read/watch machinery.
func (e *Engine) Close() {
	e.reader.Stop()
	if e.watcher != nil {
		e.watcher.Close()
	}
}

// OpenFiles opens every path, merging them into a single addressable
// stream once there is more than one. Call ScanAll afterward to populate
// the break index and enable line access.
func (e *Engine) OpenFiles(paths []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range paths {
		lf, err := logfile.Open(p)
		if err != nil {
			return fmt.Errorf("opening %s: %w", p, err)
		}
		fs := &fileState{
			file:      lf,
			scanner:   timestamp.New(),
			formatter: format.New(),
		}
		e.files = append(e.files, fs)
		e.byPath[lf.DisplayPath] = fs
		e.totalSize += lf.Size()
	}
	e.merge = len(e.files) > 1
	return nil
}

// ScanAll runs the line-break scan then the timestamp scan for every open
// file, posting bus.ScanProgress and bus.NewBreaks messages as it goes,
// and rebuilds the merge index once every file has been scanned. Files
// are scanned concurrently, up to scanWorkerCount of them at a time,
// since each scan is independently I/O-bound on its own file descriptor.
func (e *Engine) ScanAll(ctx context.Context) error {
	e.mu.RLock()
	states := append([]*fileState(nil), e.files...)
	e.mu.RUnlock()

	workers := scanWorkerCount(len(states))
	if workers <= 1 {
		for _, fs := range states {
			if err := e.scanOne(ctx, fs); err != nil {
				return err
			}
		}
	} else {
		fsChan := make(chan *fileState, len(states))
		for _, fs := range states {
			fsChan <- fs
		}
		close(fsChan)

		errs := make(chan error, len(states))
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for fs := range fsChan {
					errs <- e.scanOne(ctx, fs)
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				return err
			}
		}
	}

	e.mu.Lock()
	e.rebuildMergeIndex()
	size := e.totalSize
	e.mu.Unlock()

	e.bus.Send(bus.ScanComplete{Size: size})
	return nil
}

// scanOne builds fs's break index — ScanLineBreaks delivers batches in
// ascending byte-offset order, so each one is simply appended — and then
// its timestamp index.
func (e *Engine) scanOne(ctx context.Context, fs *fileState) error {
	err := fs.file.ScanLineBreaks(ctx, func(batch []int64) {
		e.mu.Lock()
		fs.breaks = append(fs.breaks, batch...)
		count := fs.lineCount()
		if len(batch) > 0 && batch[len(batch)-1] > fs.scannedBytes {
			fs.scannedBytes = batch[len(batch)-1]
		}
		scanned := fs.scannedBytes
		fraction := e.scanFractionLocked()
		e.mu.Unlock()

		e.bus.Send(bus.ScanProgress{
			Message:          fmt.Sprintf("Scanning… (%dK lines)- ESCAPE to cancel", count/1000),
			FractionComplete: fraction,
		})
		e.bus.Send(bus.NewBreaks{Path: fs.file.DisplayPath, Breaks: batch, ScannedSize: scanned, Tail: e.isTailing()})
	})
	if err != nil {
		return err
	}

	e.mu.RLock()
	breaks := append([]int64(nil), fs.breaks...)
	e.mu.RUnlock()

	timestamps := make([]int64, len(breaks)-1)
	err = fs.file.ScanTimestamps(ctx, fs.scanner, breaks, func(lineNo int, ts time.Time) {
		timestamps[lineNo] = ts.UnixNano()
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	fs.timestampsNS = timestamps
	e.mu.Unlock()
	return nil
}

// scanFractionLocked returns bytes-scanned-so-far across every open file
// divided by their combined size, for ScanProgress.FractionComplete. Must
// be called with mu held.
func (e *Engine) scanFractionLocked() float64 {
	if e.totalSize <= 0 {
		return 1
	}
	var scanned int64
	for _, fs := range e.files {
		scanned += fs.scannedBytes
	}
	fraction := float64(scanned) / float64(e.totalSize)
	if fraction > 1 {
		fraction = 1
	}
	return fraction
}

func (e *Engine) isTailing() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tailing
}

// TotalLineCount returns the number of addressable lines across every
// open file (the merge index length once merged, or the single file's
// line count otherwise).
func (e *Engine) TotalLineCount() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.merge {
		return int64(len(e.mergeIndex))
	}
	if len(e.files) == 0 {
		return 0
	}
	return int64(e.files[0].lineCount())
}

// rebuildMergeIndex re-sorts every open file's lines into one global,
// ascending (timestamp, file_line_no) order. Must be called with mu held.
func (e *Engine) rebuildMergeIndex() {
	if !e.merge {
		return
	}
	var entries []mergeEntry
	for _, fs := range e.files {
		for i := 0; i < len(fs.timestampsNS); i++ {
			entries = append(entries, mergeEntry{timestampNS: fs.timestampsNS[i], lineNo: i, file: fs.file})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].timestampNS != entries[j].timestampNS {
			return entries[i].timestampNS < entries[j].timestampNS
		}
		return entries[i].lineNo < entries[j].lineNo
	})
	e.mergeIndex = entries
}
