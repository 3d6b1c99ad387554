//go:build !darwin

package logfile

import "os"

// createTimeNanos falls back to the Unix epoch on platforms (notably
// Linux) whose stat(2) does not reliably expose a file birth time.
func createTimeNanos(st os.FileInfo) int64 {
	return 0
}
