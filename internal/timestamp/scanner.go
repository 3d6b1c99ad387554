// Package timestamp extracts a timestamp from a single log line.
//
// A Scanner tries an ordered list of known timestamp formats against each
// line. Once a format matches, it is promoted to the front of the list so
// that homogeneous files (the overwhelming common case) settle into a
// single regexp match per line after the first hit.
package timestamp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type format struct {
	name  string
	re    *regexp.Regexp
	parse func(match []string) (time.Time, bool)
}

// Scanner holds the mutable, ordered list of formats tried against each
// line. It is not safe for concurrent use: callers that scan from more
// than one goroutine must hold their own lock around Scan, exactly as the
// reordering side effect is itself shared mutable state.
type Scanner struct {
	formats []format
}

// New returns a Scanner preloaded with the formats listed below, in the
// priority order they are tried.
func New() *Scanner {
	return &Scanner{formats: append([]format(nil), defaultFormats...)}
}

// Scan tries every known format against line, in the scanner's current
// priority order, and reports the first match. A matching format is moved
// to the front of the list before Scan returns.
func (s *Scanner) Scan(line string) (time.Time, bool) {
	for i, f := range s.formats {
		m := f.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		t, ok := f.parse(m)
		if !ok {
			continue
		}
		if i != 0 {
			rest := make([]format, 0, len(s.formats)-1)
			rest = append(rest, s.formats[:i]...)
			rest = append(rest, s.formats[i+1:]...)
			s.formats = append([]format{f}, rest...)
		}
		return t, true
	}
	return time.Time{}, false
}

func mustParseInLocation(layout, value string, loc *time.Location) (time.Time, bool) {
	// The ISO layouts use a space between date and time; accept the "T"
	// separator their patterns also match.
	if len(value) > 10 && value[10] == 'T' {
		value = value[:10] + " " + value[11:]
	}
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func withCurrentYear(t time.Time) time.Time {
	now := time.Now()
	return time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// defaultFormats mirrors the priority-ordered pattern table used by the
// reference viewer this engine is modeled on: ISO-ish timestamps with
// comma or dot fractional seconds (with and without a trailing offset),
// the same with a literal "T" date/time separator, BSD syslog, the two
// common HTTP access-log stamps, and bare epoch seconds/milliseconds.
//
// None of the patterns are start-anchored: a timestamp may occur anywhere
// in the line (e.g. after a leading hostname or client IP in combined log
// format), so matching mirrors an unanchored search rather than a prefix
// match.
var defaultFormats = []format{
	{
		name: "iso-comma-tz",
		re:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}),(\d{3})([+-]\d{2}:?\d{2}|Z)`),
		parse: func(m []string) (time.Time, bool) {
			return mustParseInLocation("2006-01-02 15:04:05.000Z07:00", normalizeOffset(m[1]+"."+m[2]+m[3]), time.UTC)
		},
	},
	{
		name: "iso-comma",
		re:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}),(\d{3})\b`),
		parse: func(m []string) (time.Time, bool) {
			return mustParseInLocation("2006-01-02 15:04:05.000", m[1]+"."+m[2], time.Local)
		},
	},
	{
		name: "iso-dot-tz",
		re:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}\.\d+)([+-]\d{2}:?\d{2}|Z)`),
		parse: func(m []string) (time.Time, bool) {
			return mustParseInLocation("2006-01-02 15:04:05.999999999Z07:00", normalizeOffset(m[1]+m[2]), time.UTC)
		},
	},
	{
		name: "iso-dot",
		re:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}\.\d+)\b`),
		parse: func(m []string) (time.Time, bool) {
			return mustParseInLocation("2006-01-02 15:04:05.999999999", m[1], time.Local)
		},
	},
	{
		name: "iso-plain-tz",
		re:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2})([+-]\d{2}:?\d{2}|Z)`),
		parse: func(m []string) (time.Time, bool) {
			return mustParseInLocation("2006-01-02 15:04:05Z07:00", normalizeOffset(m[1]+m[2]), time.UTC)
		},
	},
	{
		name: "iso-plain",
		re:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2})\b`),
		parse: func(m []string) (time.Time, bool) {
			return mustParseInLocation("2006-01-02 15:04:05", m[1], time.Local)
		},
	},
	{
		name: "syslog",
		re:   regexp.MustCompile(`([A-Z][a-z]{2}\s+\d{1,2} \d{2}:\d{2}:\d{2})\b`),
		parse: func(m []string) (time.Time, bool) {
			t, err := time.Parse("Jan _2 15:04:05", m[1])
			if err != nil {
				return time.Time{}, false
			}
			return withCurrentYear(t), true
		},
	},
	{
		name: "http-common",
		re:   regexp.MustCompile(`(\d{2}/[A-Z][a-z]{2}/\d{4} \d{2}:\d{2}:\d{2})\b`),
		parse: func(m []string) (time.Time, bool) {
			return mustParseInLocation("02/Jan/2006 15:04:05", m[1], time.Local)
		},
	},
	{
		name: "http-combined-tz",
		re:   regexp.MustCompile(`(\d{2}/[A-Z][a-z]{2}/\d{4}:\d{2}:\d{2}:\d{2}) ([+-]\d{4})`),
		parse: func(m []string) (time.Time, bool) {
			return mustParseInLocation("02/Jan/2006:15:04:05 -0700", m[1]+" "+m[2], time.UTC)
		},
	},
	{
		name: "epoch-seconds",
		re:   regexp.MustCompile(`(\d{10})\.(\d+)\b`),
		parse: func(m []string) (time.Time, bool) {
			secs, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return time.Time{}, false
			}
			frac := "0." + m[2]
			f, err := strconv.ParseFloat(frac, 64)
			if err != nil {
				return time.Time{}, false
			}
			return time.Unix(secs, int64(f*1e9)), true
		},
	},
	{
		name: "epoch-millis",
		re:   regexp.MustCompile(`(\d{13})\b`),
		parse: func(m []string) (time.Time, bool) {
			ms, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return time.Time{}, false
			}
			return time.UnixMilli(ms), true
		},
	},
}

// normalizeOffset turns a "Z" or "+hhmm" style suffix lacking a colon into
// the colon form time.Parse's Z07:00 layout expects.
func normalizeOffset(s string) string {
	if strings.HasSuffix(s, "Z") {
		return s
	}
	if len(s) >= 5 {
		tail := s[len(s)-5:]
		if (tail[0] == '+' || tail[0] == '-') && !strings.Contains(tail, ":") {
			return s[:len(s)-5] + tail[:3] + ":" + tail[3:]
		}
	}
	return s
}
