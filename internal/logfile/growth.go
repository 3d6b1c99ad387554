package logfile

import (
	"time"

	"github.com/kdelon/logscope/internal/timestamp"
)

// ScanTimestampsRange is ScanTimestamps restricted to the lines
// [fromLine, len(breaks)-1), used after an incremental growth scan where
// only the newly appended lines need their timestamps computed. previous
// starts from the file's creation time: timestamps recorded for lines
// before fromLine are not carried over, so new lines ahead of the first
// one with a timestamp of its own are reported with the creation time.
func (lf *File) ScanTimestampsRange(scanner *timestamp.Scanner, breaks []int64, fromLine int, emit func(lineNo int, ts time.Time)) error {
	previous := lf.CreateTime()
	for i := fromLine; i+1 < len(breaks); i++ {
		line, err := lf.GetLine(breaks[i], breaks[i+1])
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

// ScanLineBreaksFrom scans only the bytes appended since a previous scan
// left off at fromByteOffset, emitting ascending line-start offsets for
// any newly completed lines followed by a final entry equal to the
// file's current size. Used by the watcher-driven growth path, where
// rescanning the whole file on every write would be wasteful. Call
// Refresh first so Size() reflects the growth being scanned.
func (lf *File) ScanLineBreaksFrom(fromByteOffset int64, emit func(breaks []int64)) error {
	size := lf.Size()
	if size <= fromByteOffset {
		emit([]int64{size})
		return nil
	}

	const chunkSize = 256 * 1024
	var batch []int64
	pos := fromByteOffset
	for pos < size {
		end := pos + chunkSize
		if end > size {
			end = size
		}
		buf, err := lf.GetRaw(pos, end)
		if err != nil {
			return err
		}
		for i, b := range buf {
			if b == '\n' {
				batch = append(batch, pos+int64(i)+1)
			}
		}
		pos = end
	}
	if len(batch) == 0 || batch[len(batch)-1] != size {
		batch = append(batch, size)
	}
	emit(batch)
	return nil
}
