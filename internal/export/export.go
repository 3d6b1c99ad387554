// Package export implements C8's save-merged-stream operation: writing
// the engine's current addressable line sequence out to a plain text
// file, one line per line, in the engine's current (merged or
// single-file) order.
package export

import (
	"bufio"
	"fmt"
	"os"
)

// LineSource is the subset of *engine.Engine this package depends on,
// kept narrow so tests can supply a fake without importing the engine
// package or opening real files.
type LineSource interface {
	TotalLineCount() int64
	GetLineFromIndexBlocking(lineNo int) (string, error)
}

// SaveMerged streams every line from src, in order, to path. It writes to
// a temporary file in the same directory and renames it over path only
// once every line has been written successfully, so a failure partway
// through never leaves a truncated file at the destination.
func SaveMerged(src LineSource, path string) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temporary output %s: %w", tmpPath, err)
	}

	w := bufio.NewWriterSize(f, 256*1024)
	total := src.TotalLineCount()
	for i := int64(0); i < total; i++ {
		line, err := src.GetLineFromIndexBlocking(int(i))
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("reading line %d: %w", i, err)
		}
		if _, err := w.WriteString(line); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return nil
}
