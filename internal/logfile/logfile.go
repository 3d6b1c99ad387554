// Package logfile owns a single on-disk log file: opening it (optionally
// transparently decompressing it first), positional reads that never
// perturb the shared file offset, and the two scanning passes that build
// the line-break index and its per-line timestamps.
package logfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Sentinel error kinds, matching the taxonomy every caller of this
// package switches on: a file that doesn't exist, one we lack permission
// to read, one that isn't a regular file (a directory, a socket, ...),
// and one whose compressed content could not be inflated.
var (
	ErrNotFound      = errors.New("log file not found")
	ErrPermission    = errors.New("permission denied")
	ErrNotAFile      = errors.New("not a regular file")
	ErrDecompression = errors.New("failed to decompress log file")
)

// File is one opened, possibly-decompressed log file. The zero value is
// not usable; construct with Open.
type File struct {
	// DisplayPath is the path the caller asked to open. When the file was
	// transparently decompressed, this differs from the path actually
	// read from disk.
	DisplayPath string

	f       *os.File
	mu      sync.Mutex // guards seek-based fallback reads on non-unix platforms
	size    int64
	tmpPath string // set when DisplayPath was decompressed to a scratch file
	birthNS int64  // best-effort creation time, falls back to epoch 0
}

// Open opens path for reading, transparently decompressing it first if it
// looks gzip- or bzip2-compressed by extension or magic bytes. The
// returned File must be closed with Close when no longer needed.
func Open(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermission, path)
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	readPath := path
	var tmpPath string
	if kind, ok := detectCompression(path); ok {
		decompressed, err := decompressToTemp(path, kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		readPath = decompressed
		tmpPath = decompressed
	}

	f, err := os.Open(readPath)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermission, path)
		}
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	return &File{
		DisplayPath: path,
		f:           f,
		size:        st.Size(),
		tmpPath:     tmpPath,
		birthNS:     createTimeNanos(st),
	}, nil
}

// Close releases the underlying file descriptor and removes any scratch
// file created to hold decompressed content.
func (lf *File) Close() error {
	err := lf.f.Close()
	if lf.tmpPath != "" {
		os.Remove(lf.tmpPath)
	}
	return err
}

// Size returns the last known size of the file in bytes. It does not
// re-stat; callers tracking a growing file update this via Refresh.
func (lf *File) Size() int64 {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	return lf.size
}

// Refresh re-stats the underlying descriptor and returns the new size,
// updating the cached value. Used by the watcher after observing growth.
func (lf *File) Refresh() (int64, error) {
	st, err := lf.f.Stat()
	if err != nil {
		return 0, err
	}
	lf.mu.Lock()
	lf.size = st.Size()
	lf.mu.Unlock()
	return lf.size, nil
}

// CreateTime returns the file's best-effort creation time: the
// filesystem's birth time where the platform exposes one, or the Unix
// epoch otherwise (matching the reference viewer's own fallback).
func (lf *File) CreateTime() time.Time {
	return time.Unix(0, lf.birthNS)
}

// GetLine reads the half-open byte range [start, end) and returns it
// decoded as UTF-8 (invalid sequences replaced), with a trailing newline
// or carriage return stripped and tabs expanded to 4 columns.
func (lf *File) GetLine(start, end int64) (string, error) {
	raw, err := lf.GetRaw(start, end)
	if err != nil {
		return "", err
	}
	line := strings.ToValidUTF8(string(raw), "�")
	line = strings.TrimRight(line, "\r\n")
	return expandTabs(line, 4), nil
}

func expandTabs(s string, width int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := width - (col % width)
			for i := 0; i < n; i++ {
				b.WriteByte(' ')
			}
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
