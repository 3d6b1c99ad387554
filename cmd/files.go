package cmd

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// collectFiles gathers all log file paths from the provided arguments.
// Arguments can be individual files, glob patterns (e.g. "*.log"), or
// directories (scanned non-recursively for supported log files).
func collectFiles(args []string) []string {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			dirFiles, err := gatherLogFiles(arg)
			if err != nil {
				log.Printf("[WARN] failed to read directory %s: %v", arg, err)
				continue
			}
			files = append(files, dirFiles...)
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			log.Printf("[WARN] invalid pattern %s: %v", arg, err)
			continue
		}
		if len(matches) == 0 {
			// Not a glob pattern, or nothing matched; pass it through so
			// logfile.Open reports the precise stat error downstream.
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}

	return sortPaths(files)
}

// gatherLogFiles scans a directory for supported log files (non-recursive).
func gatherLogFiles(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.Readdir(-1)
	if err != nil {
		return nil, err
	}

	var logFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isSupportedLogFile(entry.Name()) {
			logFiles = append(logFiles, filepath.Join(dir, entry.Name()))
		}
	}
	return logFiles, nil
}

// isSupportedLogFile reports whether name looks like a log file logscope
// knows how to open, including the compressed variants internal/logfile
// decompresses transparently.
func isSupportedLogFile(name string) bool {
	lower := strings.ToLower(name)
	supported := []string{
		".log", ".txt", ".csv", ".json", ".out",
		".log.gz", ".txt.gz", ".gz",
		".log.bz2", ".txt.bz2", ".bz2",
	}
	for _, ext := range supported {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// sortPaths orders paths the way the reference viewer does: by comparing
// each filename's dot-separated tokens left to right, with purely numeric
// tokens compared as integers (so "log.9" sorts before "log.10") and every
// other token compared case-insensitively. Shorter token lists sort first
// when one is a prefix of the other.
func sortPaths(paths []string) []string {
	type keyed struct {
		path   string
		tokens []string
	}
	ks := make([]keyed, len(paths))
	for i, p := range paths {
		ks[i] = keyed{path: p, tokens: strings.Split(filepath.Base(p), ".")}
	}

	less := func(a, b keyed) bool {
		for i := 0; i < len(a.tokens) && i < len(b.tokens); i++ {
			ta, tb := a.tokens[i], b.tokens[i]
			na, errA := strconv.Atoi(ta)
			nb, errB := strconv.Atoi(tb)
			if errA == nil && errB == nil {
				if na != nb {
					return na < nb
				}
				continue
			}
			la, lb := strings.ToLower(ta), strings.ToLower(tb)
			if la != lb {
				return la < lb
			}
		}
		return len(a.tokens) < len(b.tokens)
	}

	sort.SliceStable(ks, func(i, j int) bool { return less(ks[i], ks[j]) })

	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.path
	}
	return out
}
