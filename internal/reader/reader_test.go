package reader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kdelon/logscope/internal/logfile"
)

func openTestFile(t *testing.T, content string) *logfile.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	lf, err := logfile.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { lf.Close() })
	return lf
}

func TestRequestDeliversResult(t *testing.T) {
	lf := openTestFile(t, "hello\nworld\n")
	var breaks []int64
	if err := lf.ScanLineBreaks(context.Background(), func(b []int64) { breaks = append(breaks, b...) }); err != nil {
		t.Fatal(err)
	}

	r := New()
	defer r.Stop()

	key := Key{File: lf, Start: breaks[0], End: breaks[1]}
	r.Request(key)

	select {
	case res := <-r.Results:
		if res.Line != "hello" {
			t.Fatalf("expected %q, got %q", "hello", res.Line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result")
	}
}

func TestDuplicateRequestNotDoubleServiced(t *testing.T) {
	lf := openTestFile(t, "hello\n")
	r := New()
	defer r.Stop()

	key := Key{File: lf, Start: 0, End: 5}
	r.Request(key)
	r.Request(key)

	<-r.Results
	select {
	case <-r.Results:
		t.Fatal("expected only one result for duplicate requests")
	case <-time.After(300 * time.Millisecond):
	}
}
