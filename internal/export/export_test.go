package export

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeSource struct {
	lines []string
}

func (f fakeSource) TotalLineCount() int64 { return int64(len(f.lines)) }
func (f fakeSource) GetLineFromIndexBlocking(lineNo int) (string, error) {
	return f.lines[lineNo], nil
}

func TestSaveMergedWritesEveryLine(t *testing.T) {
	src := fakeSource{lines: []string{"alpha", "beta", "gamma"}}
	path := filepath.Join(t.TempDir(), "out.log")

	if err := SaveMerged(src, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "alpha\nbeta\ngamma\n" {
		t.Fatalf("unexpected output: %q", string(data))
	}
}

func TestSaveMergedEmptySource(t *testing.T) {
	src := fakeSource{}
	path := filepath.Join(t.TempDir(), "out.log")
	if err := SaveMerged(src, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty output, got %q", string(data))
	}
}
