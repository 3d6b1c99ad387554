//go:build !unix

package logfile

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/kdelon/logscope/internal/timestamp"
)

// GetRaw reads the half-open byte range [start, end) by seeking under a
// mutex, since this platform has no positional-read primitive wired up.
func (lf *File) GetRaw(start, end int64) ([]byte, error) {
	if end < start {
		return nil, nil
	}
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if _, err := lf.f.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, end-start)
	n, err := io.ReadFull(lf.f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

// ScanLineBreaks walks the file forward with a buffered reader (no mmap
// available on this platform), batching newly found offsets every 1000
// entries or 250ms. Batches arrive in ascending byte-offset order, so a
// caller can always build the final break list by appending each one.
func (lf *File) ScanLineBreaks(ctx context.Context, emit func(breaks []int64)) error {
	lf.mu.Lock()
	_, err := lf.f.Seek(0, io.SeekStart)
	lf.mu.Unlock()
	if err != nil {
		return err
	}

	r := bufio.NewReaderSize(lf.f, 256*1024)
	batch := []int64{0}
	lastFlush := nowFunc()
	var pos, last int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		pos++
		if b == '\n' {
			batch = append(batch, pos)
			last = pos
			if len(batch) >= scanBatchSize || nowFunc().Sub(lastFlush) >= scanBatchInterval {
				emit(append([]int64(nil), batch...))
				batch = batch[:0]
				lastFlush = nowFunc()
			}
		}
	}
	if pos != last {
		batch = append(batch, pos)
	}
	emit(append([]int64(nil), batch...))
	return nil
}

const scanBatchSize = 1000
const scanBatchInterval = 250 * time.Millisecond

var nowFunc = time.Now

// ScanTimestamps has the same contract as the unix variant.
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
