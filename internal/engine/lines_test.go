package engine

import (
	"context"
	"testing"
)

func TestGetTextBlockingReturnsLineStyleAndTimestamp(t *testing.T) {
	path := writeFile(t, "a.log", "2024-01-01 00:00:00 hello world\n")

	e := New()
	defer e.Close()
	go e.DrainLineReads()

	if err := e.OpenFiles([]string{path}); err != nil {
		t.Fatal(err)
	}
	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	line, styled, ts, hasTS, ok := e.GetTextBlocking(0, false)
	if !ok {
		t.Fatal("expected GetTextBlocking to succeed")
	}
	if line != "2024-01-01 00:00:00 hello world" {
		t.Fatalf("unexpected line: %q", line)
	}
	if styled.Plain != line {
		t.Fatalf("expected styled.Plain to equal the decoded line, got %q", styled.Plain)
	}
	if !hasTS {
		t.Fatal("expected a parsed timestamp")
	}
	if ts == 0 {
		t.Fatal("expected a non-zero timestamp")
	}
}

func TestGetTextNonBlockingCacheMissEnqueuesRead(t *testing.T) {
	path := writeFile(t, "a.log", "just text, no timestamp\n")

	e := New()
	defer e.Close()
	go e.DrainLineReads()

	if err := e.OpenFiles([]string{path}); err != nil {
		t.Fatal(err)
	}
	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, _, _, _, ok := e.GetText(0, false, false); ok {
		t.Fatal("expected cache miss on first non-blocking call")
	}
}

func TestGetRenderCachesByFindText(t *testing.T) {
	path := writeFile(t, "a.log", "error: disk full\n")

	e := New()
	defer e.Close()
	go e.DrainLineReads()

	if err := e.OpenFiles([]string{path}); err != nil {
		t.Fatal(err)
	}
	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Prime the line cache so GetRender's internal GetText call hits.
	if _, err := e.GetLineBlocking(0); err != nil {
		t.Fatal(err)
	}
	e.SetFind("disk", false, false) // establishes the baseline find text

	if _, ok := e.GetRender(0, false, "disk"); !ok {
		t.Fatal("expected GetRender to succeed once the line is cached")
	}
	if e.renderCache.Len() != 1 {
		t.Fatalf("expected 1 render cache entry, got %d", e.renderCache.Len())
	}

	e.SetFind("disk", false, false)
	if e.renderCache.Len() != 1 {
		t.Fatalf("expected render cache untouched by a no-op find change, got %d", e.renderCache.Len())
	}

	e.SetFind("full", false, false)
	if e.renderCache.Len() != 0 {
		t.Fatalf("expected render cache purged on find-text change, got %d", e.renderCache.Len())
	}
}
