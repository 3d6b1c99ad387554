package format

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Span marks a half-open byte range [Start, End) of a Styled value's Plain
// text that should be rendered with Style.
type Span struct {
	Start, End int
	Style      lipgloss.Style
}

// Styled pairs a canonical plain-text line with the style spans used to
// render it. Plain never changes once constructed, so Render().plain ==
// Plain always holds regardless of how many spans are added.
type Styled struct {
	Plain string
	Spans []Span
}

// Render applies every span's style to its byte range and concatenates
// the result. Spans are applied in Start order; overlapping spans are not
// expected from any classifier in this package but, if present, a span
// starting before the end of an already applied one is skipped.
func (s Styled) Render() string {
	if len(s.Spans) == 0 {
		return s.Plain
	}
	spans := append([]Span(nil), s.Spans...)
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp.Start < pos || sp.Start >= sp.End || sp.End > len(s.Plain) {
			continue
		}
		b.WriteString(s.Plain[pos:sp.Start])
		b.WriteString(sp.Style.Render(s.Plain[sp.Start:sp.End]))
		pos = sp.End
	}
	b.WriteString(s.Plain[pos:])
	return b.String()
}

// Abbreviate truncates the plain text to max runes, appending an ellipsis
// when truncation occurred, and drops any span entirely past the cut.
func (s Styled) Abbreviate(max int) Styled {
	runes := []rune(s.Plain)
	if len(runes) <= max {
		return s
	}
	prefix := string(runes[:max])
	cut := prefix + "…"
	var kept []Span
	for _, sp := range s.Spans {
		if sp.Start >= len(prefix) {
			continue
		}
		end := sp.End
		if end > len(prefix) {
			end = len(prefix)
		}
		kept = append(kept, Span{Start: sp.Start, End: end, Style: sp.Style})
	}
	return Styled{Plain: cut, Spans: kept}
}
