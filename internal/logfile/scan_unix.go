//go:build unix

package logfile

import (
	"bytes"
	"context"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kdelon/logscope/internal/timestamp"
)

// GetRaw reads the half-open byte range [start, end) using a positional
// read (pread), which never touches the shared file offset — safe to call
// concurrently with a watcher that is independently reading the tail of
// the same descriptor.
func (lf *File) GetRaw(start, end int64) ([]byte, error) {
	if end < start {
		return nil, nil
	}
	buf := make([]byte, end-start)
	n, err := unix.Pread(int(lf.f.Fd()), buf, start)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

const scanBatchSize = 1000
const scanBatchInterval = 250 * time.Millisecond

// ScanLineBreaks mmaps the file and walks backward from the end looking
// for '\n' bytes, exactly as a reverse rfind scan would, collecting every
// line-start offset and then emitting them forward in ascending-offset
// batches of up to 1000 entries, so a caller can always build the final
// break list by simply appending each batch it receives in order. Breaks
// are line-start offsets: the first is always 0, and every other entry is
// one past a '\n'. The final batch's last entry is always the file size,
// so a (possibly partial, newline-less) last line is always addressable
// as breaks[len(breaks)-2]..breaks[len(breaks)-1]. Scanning stops early
// if ctx is canceled.
func (lf *File) ScanLineBreaks(ctx context.Context, emit func(breaks []int64)) error {
	size := lf.Size()
	if size == 0 {
		emit([]int64{0})
		return nil
	}

	data, err := unix.Mmap(int(lf.f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return scanLineBreaksFallback(lf, size, emit)
	}
	defer unix.Munmap(data)

	descending := []int64{size}
	pos := int(size)
	for pos > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		idx := bytes.LastIndexByte(data[:pos], '\n')
		if idx < 0 {
			break
		}
		if off := int64(idx) + 1; off != size {
			descending = append(descending, off)
		}
		pos = idx
	}
	descending = append(descending, 0)

	breaks := reversed(descending)
	for start := 0; start < len(breaks); start += scanBatchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		end := start + scanBatchSize
		if end > len(breaks) {
			end = len(breaks)
		}
		emit(append([]int64(nil), breaks[start:end]...))
	}
	return nil
}

// scanLineBreaksFallback handles the rare case where mmap itself fails
// (network filesystems, special files, some container sandboxes): it
// falls back to a forward positional-read scan instead of erroring out.
// Batches already arrive in ascending byte-offset order here, matching
// ScanLineBreaks' append contract.
func scanLineBreaksFallback(lf *File, size int64, emit func(breaks []int64)) error {
	batch := []int64{0}
	lastFlush := nowFunc()
	const chunkSize = 256 * 1024
	buf := make([]byte, chunkSize)
	var pos, last int64
	for pos < size {
		n, err := unix.Pread(int(lf.f.Fd()), buf, pos)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		for i := 0; i < n; i++ {
			if buf[i] == '\n' {
				last = pos + int64(i) + 1
				batch = append(batch, last)
				if len(batch) >= scanBatchSize || nowFunc().Sub(lastFlush) >= scanBatchInterval {
					emit(append([]int64(nil), batch...))
					batch = batch[:0]
					lastFlush = nowFunc()
				}
			}
		}
		pos += int64(n)
	}
	if last != size {
		batch = append(batch, size)
	}
	emit(append([]int64(nil), batch...))
	return nil
}

// reversed returns offsets in ascending order; the backward scan collects
// them descending.
func reversed(in []int64) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

var nowFunc = time.Now

// ScanTimestamps walks the file forward line by line (using the
// already-built break index) and reports the timestamp found on each
// line, falling back to the previous line's timestamp, and ultimately to
// the file's creation time, exactly as the reference viewer does.
// Scanning stops early if ctx is canceled.
func (lf *File) ScanTimestamps(ctx context.Context, scanner *timestamp.Scanner, breaks []int64, emit func(lineNo int, ts time.Time)) error {
	previous := lf.CreateTime()
	for i := 0; i+1 < len(breaks); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		start, end := breaks[i], breaks[i+1]
		line, err := lf.GetLine(start, end)
		if err != nil {
			return err
		}
		if ts, ok := scanner.Scan(line); ok {
			previous = ts
		}
		emit(i, previous)
	}
	return nil
}
