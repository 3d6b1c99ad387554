package engine

import (
	"github.com/kdelon/logscope/internal/bus"
	"github.com/kdelon/logscope/internal/format"
	"github.com/kdelon/logscope/internal/logfile"
	"github.com/kdelon/logscope/internal/reader"
)

// span identifies one addressable line: which file it lives in, and its
// byte range within that file.
type span struct {
	file       *logfile.File
	start, end int64
}

// IndexToSpan maps an absolute line number in the engine's current
// addressing space (the merge index when multiple files are open, or the
// single open file's own line numbering otherwise) to the file and byte
// range holding that line. lineNo is clamped to [0, TotalLineCount()-1];
// ok is false when no files are open at all, or when several files are
// open and the merge index is still empty.
func (e *Engine) IndexToSpan(lineNo int) (file *logfile.File, start, end int64, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.indexToSpanLocked(lineNo)
}

func (e *Engine) indexToSpanLocked(lineNo int) (*logfile.File, int64, int64, bool) {
	if e.merge {
		if len(e.mergeIndex) == 0 {
			return nil, 0, 0, false
		}
		if lineNo < 0 {
			lineNo = 0
		}
		if lineNo >= len(e.mergeIndex) {
			lineNo = len(e.mergeIndex) - 1
		}
		entry := e.mergeIndex[lineNo]
		fs := e.byPath[entry.file.DisplayPath]
		return entry.file, fs.breaks[entry.lineNo], fs.breaks[entry.lineNo+1], true
	}

	if len(e.files) == 0 {
		return nil, 0, 0, false
	}
	fs := e.files[0]
	n := fs.lineCount()
	if n == 0 {
		return fs.file, 0, 0, true
	}
	if lineNo < 0 {
		lineNo = 0
	}
	if lineNo >= n {
		lineNo = n - 1
	}
	return fs.file, fs.breaks[lineNo], fs.breaks[lineNo+1], true
}

// GetLineFromIndexBlocking synchronously reads and returns the raw line
// text at lineNo, bypassing the cache entirely. Used by save/export
// paths that stream every line exactly once and gain nothing from
// caching it.
func (e *Engine) GetLineFromIndexBlocking(lineNo int) (string, error) {
	file, start, end, ok := e.IndexToSpan(lineNo)
	if !ok {
		return "", nil
	}
	return file.GetLine(start, end)
}

// GetLineBlocking reads and caches the line at lineNo synchronously.
func (e *Engine) GetLineBlocking(lineNo int) (string, error) {
	file, start, end, ok := e.IndexToSpan(lineNo)
	if !ok {
		return "", nil
	}
	key := lineKey{file: file, start: start, end: end}
	if line, hit := e.lineCache.Get(key); hit {
		return line, nil
	}
	line, err := file.GetLine(start, end)
	if err != nil {
		return "", err
	}
	e.lineCache.Add(key, line)
	return line, nil
}

// GetLine returns the cached line at lineNo if present; otherwise it
// enqueues an asynchronous read (deduplicated against any identical
// request already in flight) and returns ok=false. The result later
// arrives as a bus.LineRead message and should be re-requested by the
// caller through GetLine once delivered.
func (e *Engine) GetLine(lineNo int) (line string, ok bool) {
	file, start, end, found := e.IndexToSpan(lineNo)
	if !found {
		return "", false
	}
	key := lineKey{file: file, start: start, end: end}
	if cached, hit := e.lineCache.Get(key); hit {
		return cached, true
	}
	e.reader.Request(reader.Key{File: file, Start: start, End: end})
	return "", false
}

// DrainLineReads should be run on its own goroutine: it forwards every
// completed async read from the reader into the line cache and the bus
// as a bus.LineRead message, invalidating any render/text cache entries
// for the same byte range since a line can only be re-read after its
// bytes changed underneath a tailed file.
func (e *Engine) DrainLineReads() {
	for res := range e.reader.Results {
		if res.Err != nil {
			e.bus.Send(bus.FileError{Path: res.Key.File.DisplayPath, Err: res.Err})
			continue
		}
		key := lineKey{file: res.Key.File, start: res.Key.Start, end: res.Key.End}
		e.lineCache.Add(key, res.Line)
		e.textCache.Remove(textKey{file: res.Key.File, start: res.Key.Start, end: res.Key.End, abbreviate: true})
		e.textCache.Remove(textKey{file: res.Key.File, start: res.Key.Start, end: res.Key.End, abbreviate: false})
		for _, rk := range e.renderCache.Keys() {
			if rk.file == res.Key.File && rk.start == res.Key.Start && rk.end == res.Key.End {
				e.renderCache.Remove(rk)
			}
		}
		e.bus.Send(bus.LineRead{Path: res.Key.File.DisplayPath, Start: res.Key.Start, End: res.Key.End, Line: res.Line})
	}
}

// maxLineLength caps how many runes GetText will render before
// abbreviating with a trailing ellipsis.
const maxLineLength = 1000

// GetText is the primary render entry point: get_text(i, abbreviate, block)
// from the engine's public contract. It returns the raw decoded line, its
// format-classified styled rendering (abbreviated to maxLineLength runes
// when abbreviate is true), and the line's parsed timestamp if any.
//
// On a text-cache miss it falls through to the line cache; on a line-cache
// miss, block=false enqueues an asynchronous read via the line reader and
// returns ok=false (the caller re-requests once a bus.LineRead arrives),
// while block=true instead reads the line synchronously through the log
// file, exactly as GetLineBlocking does, for callers (export, tests) that
// need the rendered row immediately rather than on the next render tick.
func (e *Engine) GetText(lineNo int, abbreviate, block bool) (line string, styled format.Styled, timestampNS int64, hasTimestamp bool, ok bool) {
	file, start, end, found := e.IndexToSpan(lineNo)
	if !found {
		return "", format.Styled{}, 0, false, false
	}
	tk := textKey{file: file, start: start, end: end, abbreviate: abbreviate}
	lk := lineKey{file: file, start: start, end: end}

	if cachedStyled, hit := e.textCache.Get(tk); hit {
		rawLine, lineHit := e.lineCache.Get(lk)
		if !lineHit {
			var err error
			if rawLine, err = file.GetLine(start, end); err != nil {
				return "", format.Styled{}, 0, false, false
			}
		}
		ts, hasTS := e.GetTimestamp(lineNo)
		return rawLine, cachedStyled, ts, hasTS, true
	}

	rawLine, hit := e.lineCache.Get(lk)
	if !hit {
		if !block {
			e.reader.Request(reader.Key{File: file, Start: start, End: end})
			return "", format.Styled{}, 0, false, false
		}
		read, err := file.GetLine(start, end)
		if err != nil {
			return "", format.Styled{}, 0, false, false
		}
		rawLine = read
		e.lineCache.Add(lk, rawLine)
	}

	fs := e.fileStateFor(file)
	e.mu.Lock() // Parse reorders the formatter's list in place
	result := fs.formatter.Parse(rawLine)
	e.mu.Unlock()
	styled = result.Styled
	e.indexSearchTokens(rawLine)
	if abbreviate {
		styled = styled.Abbreviate(maxLineLength)
	}
	e.textCache.Add(tk, styled)

	ts, hasTS := e.GetTimestamp(lineNo)
	return rawLine, styled, ts, hasTS, true
}

// GetTextBlocking is GetText with block=true, for callers that always need
// the rendered row in hand (export, tests) rather than tolerating a
// cache-miss round trip through the line reader.
func (e *Engine) GetTextBlocking(lineNo int, abbreviate bool) (line string, styled format.Styled, timestampNS int64, hasTimestamp bool, ok bool) {
	return e.GetText(lineNo, abbreviate, true)
}

// GetRender returns the display row for lineNo, consulting the render
// cache first. On a miss it builds the row from GetText (non-blocking; a
// text-cache miss here simply means the row renders once the async line
// read completes) and stores it keyed by (span, pointer, find). The row is
// GetText's abbreviated styling as is: pointer and findText only key the
// cache entry, and no pointer or find-text highlighting is applied.
func (e *Engine) GetRender(lineNo int, pointer bool, findText string) (styled format.Styled, ok bool) {
	file, start, end, found := e.IndexToSpan(lineNo)
	if !found {
		return format.Styled{}, false
	}
	rk := renderKey{file: file, start: start, end: end, pointer: pointer, find: findText}
	if cached, hit := e.renderCache.Get(rk); hit {
		return cached, true
	}

	_, styled, _, _, textOK := e.GetText(lineNo, true, false)
	if !textOK {
		return format.Styled{}, false
	}
	e.renderCache.Add(rk, styled)
	return styled, true
}

// GetTimestamp returns the timestamp recorded for lineNo during the
// scan pass, bypassing the text cache entirely (matching the reference
// viewer's direct-read timestamp accessor).
func (e *Engine) GetTimestamp(lineNo int) (int64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.merge {
		if lineNo < 0 || lineNo >= len(e.mergeIndex) {
			return 0, false
		}
		return e.mergeIndex[lineNo].timestampNS, true
	}
	if len(e.files) == 0 {
		return 0, false
	}
	fs := e.files[0]
	if lineNo < 0 || lineNo >= len(fs.timestampsNS) {
		return 0, false
	}
	return fs.timestampsNS[lineNo], true
}

func (e *Engine) fileStateFor(file *logfile.File) *fileState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.byPath[file.DisplayPath]
}

// ClearCaches drops every cached line, text, render and search-index
// entry. Called whenever the underlying file content could have shifted
// in a way that invalidates byte-offset-keyed caches (rare; mainly a
// defensive operation exposed for callers that detect file truncation).
func (e *Engine) ClearCaches() {
	e.lineCache.Purge()
	e.textCache.Purge()
	e.renderCache.Purge()
	e.suggestIdx.Purge()
}

// ClearRenderCache drops only the render cache. Called on a find-string
// change: render entries are keyed by the find text, but the decoded line
// and its format-classified styling do not depend on it, so the line and
// text caches stay warm.
func (e *Engine) ClearRenderCache() {
	e.renderCache.Purge()
}
