package engine

import (
	"regexp"
	"strings"
	"time"

	"github.com/kdelon/logscope/internal/bus"
	"github.com/kdelon/logscope/internal/timestamp"
)

// splitTokenRegex mirrors the reference viewer's suggestion splitter:
// whitespace, brackets, parens, quotes and slashes all separate tokens.
var splitTokenRegex = regexp.MustCompile(`[\s/\[\]()"]+`)

// indexSearchTokens records every prefix (length >= 2) of every token in
// line as a key into the suggestion cache, mapping to the longest token
// seen with that prefix so far. This powers incremental search
// suggestions without building a full-text index.
func (e *Engine) indexSearchTokens(line string) {
	for _, tok := range splitTokenRegex.Split(line, -1) {
		if len(tok) < 2 {
			continue
		}
		lower := strings.ToLower(tok)
		for i := 2; i <= len(lower); i++ {
			prefix := lower[:i]
			if existing, hit := e.suggestIdx.Get(prefix); !hit || len(tok) > len(existing) {
				e.suggestIdx.Add(prefix, tok)
			}
		}
	}
}

// Suggest returns the best known completion for prefix, if any line
// scanned so far contained a token starting with it.
func (e *Engine) Suggest(prefix string) (string, bool) {
	if len(prefix) < 2 {
		return "", false
	}
	return e.suggestIdx.Get(strings.ToLower(prefix))
}

// Direction indicates which way a search or timestamp navigation walks.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// CheckMatch reports whether line matches re. An invalid regexp (e.g. one
// the caller is still typing) is treated as matching everything, exactly
// the "match everything on error" semantics a live search box needs so
// partially-typed patterns don't appear to hide every line.
func CheckMatch(re *regexp.Regexp, line string) bool {
	if re == nil {
		return true
	}
	return re.MatchString(line)
}

// AdvanceSearch walks from the current pointer in dir looking for a line
// matching re, moves the pointer there and returns the new position. It
// returns ok=false (and leaves the pointer untouched) if no match is
// found before the stream's edge — the caller should signal this to the
// user (a terminal bell, in the reference viewer).
func (e *Engine) AdvanceSearch(re *regexp.Regexp, dir Direction) (lineNo int, ok bool) {
	total := int(e.TotalLineCount())
	if total == 0 {
		return 0, false
	}
	pos := e.Pointer()
	step := 1
	if dir == Backward {
		step = -1
	}
	for pos += step; pos >= 0 && pos < total; pos += step {
		line, err := e.GetLineBlocking(pos)
		if err != nil {
			continue
		}
		if CheckMatch(re, line) {
			e.SetPointer(pos)
			return pos, true
		}
	}
	return 0, false
}

// navigateMaxLookahead bounds only the "find an anchor timestamp" step of
// Navigate: how many lines it scans forward from a pointer that itself
// carries no timestamp, before giving up. It does NOT bound the directional
// crossing walk, which runs to the file's edge.
const navigateMaxLookahead = 10

// NavigateUnit is the time unit a Navigate step count is measured in.
type NavigateUnit int

const (
	Minutes NavigateUnit = iota
	Hours
	Days
)

func (u NavigateUnit) duration() time.Duration {
	switch u {
	case Hours:
		return time.Hour
	case Days:
		return 24 * time.Hour
	default:
		return time.Minute
	}
}

// Navigate moves the pointer by a signed time delta of steps*unit. If the
// pointer's own line carries no timestamp, Navigate first looks up to
// navigateMaxLookahead lines forward for one to anchor from (t0); failing
// that, it gives up. From t0 it computes target = t0 + steps*unit and then
// walks — forward for a positive step count, backward for a negative one —
// with NO length cap, stopping at the first line whose timestamp crosses
// target in the walking direction (>= target walking forward, <= target
// walking backward). If the walk reaches a file end without crossing, the
// pointer lands on that edge line, per spec: "terminate at the file ends
// without error."
func (e *Engine) Navigate(steps int, unit NavigateUnit) (lineNo int, ok bool) {
	total := int(e.TotalLineCount())
	if total == 0 {
		return 0, false
	}
	pos := e.Pointer()

	dir := Forward
	if steps < 0 {
		dir = Backward
	}
	step := 1
	if dir == Backward {
		step = -1
	}

	// The scan records a fallback timestamp for every line, so whether a
	// line carries a timestamp of its own is decided from its text.
	ownTimestamp := func(p int) (int64, bool) {
		line, err := e.GetLineBlocking(p)
		if err != nil {
			return 0, false
		}
		ts, ok := timestamp.New().Scan(line)
		return ts.UnixNano(), ok
	}

	var t0 int64
	found := false
	for i := 0; i <= navigateMaxLookahead && pos+i < total; i++ {
		if ts, hit := ownTimestamp(pos + i); hit {
			t0, found = ts, true
			break
		}
	}
	if !found {
		return 0, false
	}

	target := t0 + int64(time.Duration(steps)*unit.duration())

	for p := pos + step; p >= 0 && p < total; p += step {
		ts, hit := e.GetTimestamp(p)
		if !hit {
			continue
		}
		if dir == Forward && ts >= target {
			e.SetPointer(p)
			return p, true
		}
		if dir == Backward && ts <= target {
			e.SetPointer(p)
			return p, true
		}
	}

	edge := total - 1
	if dir == Backward {
		edge = 0
	}
	e.SetPointer(edge)
	return edge, true
}

// SetFind updates the active find criterion. Per the lifecycle rule in
// spec §3 ("caches are cleared on find-string change (render cache
// only)"), a changed find text purges the render cache — whose entries
// are keyed by it — while leaving the line and text caches, which don't
// depend on it, untouched.
func (e *Engine) SetFind(text string, caseSensitive, useRegex bool) {
	e.mu.Lock()
	changed := text != e.findText
	e.findText = text
	e.caseSensitive = caseSensitive
	e.useRegex = useRegex
	e.mu.Unlock()
	if changed {
		e.ClearRenderCache()
	}
}

// Find returns the active find criterion set by SetFind.
func (e *Engine) Find() (text string, caseSensitive, useRegex bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.findText, e.caseSensitive, e.useRegex
}

// Pointer returns the current absolute line number.
func (e *Engine) Pointer() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pointer
}

// SetPointer moves the pointer to lineNo, clamped to the valid range, and
// posts a bus.PointerMoved notification.
func (e *Engine) SetPointer(lineNo int) {
	total := int(e.TotalLineCount())
	if lineNo < 0 {
		lineNo = 0
	}
	if total > 0 && lineNo >= total {
		lineNo = total - 1
	}
	e.mu.Lock()
	e.pointer = lineNo
	e.mu.Unlock()
	e.bus.Send(bus.PointerMoved{LineNo: lineNo})
}

// Goto handles a bus.Goto request: an explicit 1-based-to-0-based line
// jump requested by the user (via a goto dialog), clamped exactly like
// SetPointer.
func (e *Engine) Goto(lineNo int) {
	e.SetPointer(lineNo - 1)
}
