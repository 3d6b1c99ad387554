// Package format classifies a raw log line into a known shape (JSON,
// Common/Combined HTTP access log, or an unstructured default) and renders
// it as a styled span list for terminal display.
package format

import (
	"encoding/json"
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// maxLineLength bounds, in bytes, how much of a line classifiers look at;
// a longer line is cut to this length and the cut line is classified and
// rendered.
const maxLineLength = 10000

// Result is what parsing a line produces: the detected format name and the
// styled rendering of the line. It carries no timestamp; timestamps come
// only from the timestamp.Scanner pass.
type Result struct {
	FormatName string
	Styled     Styled
}

// logFormat is the interface every concrete classifier implements.
type logFormat interface {
	name() string
	parse(line string) (Styled, bool)
}

// Parser holds an ordered, mutable list of known formats, promoting the
// winner to the front exactly like timestamp.Scanner does for timestamp
// patterns.
type Parser struct {
	formats []logFormat
}

// New returns a Parser preloaded with the JSON, Combined and Common log
// format classifiers, tried in that order until one wins.
func New() *Parser {
	return &Parser{
		formats: []logFormat{
			jsonFormat{},
			combinedFormat{},
			commonFormat{},
		},
	}
}

// Parse classifies line and returns its styled rendering. Lines beyond
// maxLineLength are truncated before classification. A line that matches
// no known structured format is still rendered, unstyled, as "default" —
// Parse never returns an error.
func (p *Parser) Parse(line string) Result {
	if len(line) > maxLineLength {
		line = line[:maxLineLength]
	}
	for i, f := range p.formats {
		styled, ok := f.parse(line)
		if !ok {
			continue
		}
		if i != 0 {
			rest := make([]logFormat, 0, len(p.formats)-1)
			rest = append(rest, p.formats[:i]...)
			rest = append(rest, p.formats[i+1:]...)
			p.formats = append([]logFormat{f}, rest...)
		}
		return Result{FormatName: f.name(), Styled: styled}
	}
	return Result{FormatName: "default", Styled: Plain(line)}
}

// --- JSON ---

type jsonFormat struct{}

func (jsonFormat) name() string { return "json" }

func (jsonFormat) parse(line string) (Styled, bool) {
	trimmed := line
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t') {
		trimmed = trimmed[1:]
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Styled{}, false
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return Styled{}, false
	}
	return styleJSON(line), true
}

// --- HTTP access logs ---

// commonLogRegex matches Apache/NCSA Common Log Format:
//
//	host ident authuser [date] "request" status bytes
var commonLogRegex = regexp.MustCompile(
	`^(?P<host>\S+) (?P<ident>\S+) (?P<user>\S+) \[(?P<date>[^\]]+)\] ` +
		`"(?P<request>[^"]*)" (?P<status>\d{3}) (?P<bytes>\S+)`)

// combinedLogRegex additionally captures the referrer and user agent.
var combinedLogRegex = regexp.MustCompile(
	`^(?P<host>\S+) (?P<ident>\S+) (?P<user>\S+) \[(?P<date>[^\]]+)\] ` +
		`"(?P<request>[^"]*)" (?P<status>\d{3}) (?P<bytes>\S+) "(?P<referrer>[^"]*)" "(?P<agent>[^"]*)"`)

type commonFormat struct{}

func (commonFormat) name() string { return "common" }

func (commonFormat) parse(line string) (Styled, bool) {
	m := commonLogRegex.FindStringSubmatchIndex(line)
	if m == nil {
		return Styled{}, false
	}
	return styleHTTP(line, commonLogRegex, m), true
}

type combinedFormat struct{}

func (combinedFormat) name() string { return "combined" }

func (combinedFormat) parse(line string) (Styled, bool) {
	m := combinedLogRegex.FindStringSubmatchIndex(line)
	if m == nil {
		return Styled{}, false
	}
	return styleHTTP(line, combinedLogRegex, m), true
}

// statusStyle returns the lipgloss style for an HTTP status code's class:
// 1xx cyan, 2xx green, 3xx yellow, 4xx red, 5xx reverse red.
func statusStyle(status string) lipgloss.Style {
	if len(status) == 0 {
		return lipgloss.NewStyle()
	}
	switch status[0] {
	case '1':
		return lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	case '2':
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case '3':
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	case '4':
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	case '5':
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Reverse(true)
	default:
		return lipgloss.NewStyle()
	}
}

func styleHTTP(line string, re *regexp.Regexp, match []int) Styled {
	spans := []Span{}
	names := re.SubexpNames()
	for i := 1; i < len(names); i++ {
		start, end := match[2*i], match[2*i+1]
		if start < 0 {
			continue
		}
		var style lipgloss.Style
		switch names[i] {
		case "status":
			style = statusStyle(line[start:end])
		case "request":
			style = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
		case "date":
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
		default:
			continue
		}
		spans = append(spans, Span{Start: start, End: end, Style: style})
	}
	return Styled{Plain: line, Spans: spans}
}

func styleJSON(line string) Styled {
	keyRe := regexp.MustCompile(`"[^"]*"\s*:`)
	spans := []Span{}
	for _, loc := range keyRe.FindAllStringIndex(line, -1) {
		spans = append(spans, Span{
			Start: loc[0], End: loc[1] - 1,
			Style: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		})
	}
	return Styled{Plain: line, Spans: spans}
}

// Plain wraps line in a Styled value with no styling applied.
func Plain(line string) Styled {
	return Styled{Plain: line}
}
