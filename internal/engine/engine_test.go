package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSingleFileOpenScanAndRead(t *testing.T) {
	path := writeFile(t, "a.log", "2024-01-01 00:00:00 one\n2024-01-01 00:00:01 two\n2024-01-01 00:00:02 three\n")

	e := New()
	defer e.Close()
	go e.DrainLineReads()

	if err := e.OpenFiles([]string{path}); err != nil {
		t.Fatal(err)
	}
	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	if n := e.TotalLineCount(); n != 3 {
		t.Fatalf("expected 3 lines, got %d", n)
	}

	line, err := e.GetLineBlocking(1)
	if err != nil {
		t.Fatal(err)
	}
	if line != "2024-01-01 00:00:01 two" {
		t.Fatalf("unexpected line: %q", line)
	}
}

func TestMultiFileMergeOrdersByTimestamp(t *testing.T) {
	a := writeFile(t, "a.log", "2024-01-01 00:00:00 a1\n2024-01-01 00:00:02 a2\n")
	b := writeFile(t, "b.log", "2024-01-01 00:00:01 b1\n2024-01-01 00:00:03 b2\n")

	e := New()
	defer e.Close()
	go e.DrainLineReads()

	if err := e.OpenFiles([]string{a, b}); err != nil {
		t.Fatal(err)
	}
	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	if n := e.TotalLineCount(); n != 4 {
		t.Fatalf("expected 4 merged lines, got %d", n)
	}

	want := []string{
		"2024-01-01 00:00:00 a1",
		"2024-01-01 00:00:01 b1",
		"2024-01-01 00:00:02 a2",
		"2024-01-01 00:00:03 b2",
	}
	for i, w := range want {
		got, err := e.GetLineBlocking(i)
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Fatalf("line %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestGetLineAsyncCacheMiss(t *testing.T) {
	path := writeFile(t, "a.log", "hello\nworld\n")
	e := New()
	defer e.Close()
	go e.DrainLineReads()

	if err := e.OpenFiles([]string{path}); err != nil {
		t.Fatal(err)
	}
	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, ok := e.GetLine(0); ok {
		t.Fatal("expected cache miss on first call")
	}

	deadline := time.After(2 * time.Second)
	for {
		if line, ok := e.GetLine(0); ok {
			if line != "hello" {
				t.Fatalf("expected %q, got %q", "hello", line)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for async line delivery")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSetPointerClampsToValidRange(t *testing.T) {
	path := writeFile(t, "a.log", "x\ny\nz\n")
	e := New()
	defer e.Close()
	go e.DrainLineReads()

	if err := e.OpenFiles([]string{path}); err != nil {
		t.Fatal(err)
	}
	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	e.SetPointer(100)
	if p := e.Pointer(); p != 2 {
		t.Fatalf("expected clamp to last line 2, got %d", p)
	}
	e.SetPointer(-5)
	if p := e.Pointer(); p != 0 {
		t.Fatalf("expected clamp to 0, got %d", p)
	}
}

func TestIndexToSpanOutOfRangeClamps(t *testing.T) {
	path := writeFile(t, "a.log", "only\n")
	e := New()
	defer e.Close()
	go e.DrainLineReads()

	if err := e.OpenFiles([]string{path}); err != nil {
		t.Fatal(err)
	}
	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, start, end, ok := e.IndexToSpan(999)
	if !ok {
		t.Fatal("expected ok for out-of-range index")
	}
	if start != 0 || end != 5 {
		t.Fatalf("expected clamp to only line's range, got [%d,%d)", start, end)
	}
}
