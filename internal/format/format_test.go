package format

import "testing"

func TestParseJSON(t *testing.T) {
	p := New()
	r := p.Parse(`{"level":"info","msg":"hello"}`)
	if r.FormatName != "json" {
		t.Fatalf("expected json, got %s", r.FormatName)
	}
	if r.Styled.Plain != `{"level":"info","msg":"hello"}` {
		t.Fatalf("plain text mismatch: %q", r.Styled.Plain)
	}
}

func TestParseCommonLogFormat(t *testing.T) {
	p := New()
	line := `127.0.0.1 - frank [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326`
	r := p.Parse(line)
	if r.FormatName != "common" {
		t.Fatalf("expected common, got %s", r.FormatName)
	}
	if r.Styled.Plain != line {
		t.Fatal("plain text must equal input line exactly")
	}
}

func TestParseDefaultFallback(t *testing.T) {
	p := New()
	r := p.Parse("just some unstructured text")
	if r.FormatName != "default" {
		t.Fatalf("expected default, got %s", r.FormatName)
	}
	if len(r.Styled.Spans) != 0 {
		t.Fatal("default format should carry no spans")
	}
}

func TestParsePromotesWinnerToFront(t *testing.T) {
	p := New()
	line := `127.0.0.1 - frank [10/Oct/2000:13:55:36 -0700] "GET /x HTTP/1.0" 200 10`
	p.Parse(line)
	if p.formats[0].name() != "common" {
		t.Fatalf("expected common promoted to front, got %s", p.formats[0].name())
	}
}

func TestStyledPlainInvariant(t *testing.T) {
	line := `{"a":1}`
	p := New()
	r := p.Parse(line)
	if r.Styled.Render() == "" && line != "" {
		t.Fatal("render should not be empty for non-empty line")
	}
	if r.Styled.Plain != line {
		t.Fatal("styled.Plain must equal canonical line")
	}
}
