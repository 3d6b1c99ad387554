//go:build darwin

package logfile

import (
	"os"
	"syscall"
)

// createTimeNanos reads the filesystem birth time on platforms that
// expose one (macOS's st_birthtimespec).
func createTimeNanos(st os.FileInfo) int64 {
	sys, ok := st.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return sys.Birthtimespec.Sec*1e9 + sys.Birthtimespec.Nsec
}
