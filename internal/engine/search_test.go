package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// TestNavigateCrossesUnboundedWindow reproduces spec scenario S5: a file
// with one-second-spaced timestamps for 180 seconds. Navigating +1 minute
// from line 0 must land on line 60, the first line at or past t0+60s — well
// outside the 10-line anchor-lookahead window, so the crossing walk itself
// must not be capped at navigateMaxLookahead.
func TestNavigateCrossesUnboundedWindow(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 180; i++ {
		fmt.Fprintf(&b, "2024-01-01 00:%02d:%02d line %d\n", i/60, i%60, i)
	}
	path := writeFile(t, "ticks.log", b.String())

	e := New()
	defer e.Close()
	go e.DrainLineReads()

	if err := e.OpenFiles([]string{path}); err != nil {
		t.Fatal(err)
	}
	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	e.SetPointer(0)
	lineNo, ok := e.Navigate(1, Minutes)
	if !ok {
		t.Fatal("expected Navigate to find a crossing")
	}
	if lineNo != 60 {
		t.Fatalf("expected line 60, got %d", lineNo)
	}
}

// TestNavigateAnchorsFromNearbyTimestampWhenPointerHasNone verifies the
// bounded anchor-lookahead step: a pointer on an untimestamped line still
// navigates correctly as long as a timestamp appears within the next 10
// lines.
func TestNavigateAnchorsFromNearbyTimestampWhenPointerHasNone(t *testing.T) {
	content := "no timestamp here\n" +
		"2024-01-01 00:00:00 zero\n" +
		"2024-01-01 00:00:30 thirty\n" +
		"2024-01-01 00:01:00 sixty\n"
	path := writeFile(t, "anchor.log", content)

	e := New()
	defer e.Close()
	go e.DrainLineReads()

	if err := e.OpenFiles([]string{path}); err != nil {
		t.Fatal(err)
	}
	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	e.SetPointer(0)
	lineNo, ok := e.Navigate(1, Minutes)
	if !ok {
		t.Fatal("expected Navigate to anchor off the nearby timestamp")
	}
	if lineNo != 3 {
		t.Fatalf("expected line 3 (sixty), got %d", lineNo)
	}
}

// TestNavigateStopsAtFileEnd verifies that overshooting the last timestamp
// lands the pointer on the final line instead of failing.
func TestNavigateStopsAtFileEnd(t *testing.T) {
	path := writeFile(t, "short.log", "2024-01-01 00:00:00 a\n2024-01-01 00:00:01 b\n")

	e := New()
	defer e.Close()
	go e.DrainLineReads()

	if err := e.OpenFiles([]string{path}); err != nil {
		t.Fatal(err)
	}
	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	e.SetPointer(0)
	lineNo, ok := e.Navigate(1, Hours)
	if !ok {
		t.Fatal("expected Navigate to terminate at the file end without error")
	}
	if lineNo != 1 {
		t.Fatalf("expected last line 1, got %d", lineNo)
	}
}
