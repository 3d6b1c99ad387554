package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPollWatcherReportsGrowth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growing.log")
	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewPollWatcher()
	defer w.Close()

	if err := w.Add(path, 2); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("b\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	select {
	case ev := <-w.Events():
		if ev.Kind != Growth {
			t.Fatalf("expected Growth event, got %v", ev.Kind)
		}
		if ev.Size != 4 {
			t.Fatalf("expected size 4, got %d", ev.Size)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for growth event")
	}
}

func TestFSWatcherReportsGrowth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growing.log")
	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewFSWatcher()
	if err != nil {
		t.Skipf("fsnotify unavailable in this environment: %v", err)
	}
	defer w.Close()

	if err := w.Add(path, 2); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("b\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	select {
	case ev := <-w.Events():
		if ev.Kind != Growth {
			t.Fatalf("expected Growth event, got %v", ev.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for growth event")
	}
}
