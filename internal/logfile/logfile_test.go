package logfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenAndGetLine(t *testing.T) {
	path := writeTemp(t, "alpha\nbeta\ngamma\n")
	lf, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer lf.Close()

	var breaks []int64
	if err := lf.ScanLineBreaks(context.Background(), func(b []int64) {
		breaks = append(breaks, b...)
	}); err != nil {
		t.Fatal(err)
	}
	if len(breaks) < 2 {
		t.Fatalf("expected at least start+end breaks, got %v", breaks)
	}
	if breaks[0] != 0 {
		t.Fatalf("expected first break to be 0, got %d", breaks[0])
	}
	if breaks[len(breaks)-1] != int64(len("alpha\nbeta\ngamma\n")) {
		t.Fatalf("expected last break to equal file size, got %d", breaks[len(breaks)-1])
	}

	line, err := lf.GetLine(breaks[0], breaks[1])
	if err != nil {
		t.Fatal(err)
	}
	if line != "alpha" {
		t.Fatalf("expected %q, got %q", "alpha", line)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist.log"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOpenDirectoryRejected(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestGetLineStripsTrailingNewlineAndExpandsTabs(t *testing.T) {
	path := writeTemp(t, "a\tb\r\n")
	lf, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer lf.Close()
	line, err := lf.GetLine(0, int64(len("a\tb\r\n")))
	if err != nil {
		t.Fatal(err)
	}
	if line != "a   b" {
		t.Fatalf("expected tab-expanded line without CRLF, got %q", line)
	}
}

func TestEmptyFileScanYieldsSingleBreak(t *testing.T) {
	path := writeTemp(t, "")
	lf, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer lf.Close()
	var breaks []int64
	if err := lf.ScanLineBreaks(context.Background(), func(b []int64) {
		breaks = append(breaks, b...)
	}); err != nil {
		t.Fatal(err)
	}
	if len(breaks) != 1 || breaks[0] != 0 {
		t.Fatalf("expected single zero break for empty file, got %v", breaks)
	}
}
