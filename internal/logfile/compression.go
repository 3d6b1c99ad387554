package logfile

import (
	"compress/bzip2"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
)

type compressionKind int

const (
	kindGzip compressionKind = iota
	kindBzip2
)

// detectCompression reports whether path looks compressed, first by MIME
// type inferred from its extension, then (for extensionless or
// misnamed files) by sniffing the first bytes for a gzip or bzip2 magic
// header.
func detectCompression(path string) (compressionKind, bool) {
	ext := filepath.Ext(path)
	switch mime.TypeByExtension(ext) {
	case "application/gzip", "application/x-gzip":
		return kindGzip, true
	case "application/x-bzip2":
		return kindBzip2, true
	}
	switch strings.ToLower(ext) {
	case ".gz", ".gzip":
		return kindGzip, true
	case ".bz2", ".bzip2":
		return kindBzip2, true
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()
	magic := make([]byte, 3)
	n, _ := io.ReadFull(f, magic)
	if n >= 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		return kindGzip, true
	}
	if n >= 3 && string(magic) == "BZh" {
		return kindBzip2, true
	}
	return 0, false
}

// decompressToTemp streams the decompressed content of path into a
// scratch file in 256 KiB chunks and returns its path. The caller is
// responsible for removing it (File.Close does this automatically for
// files it opened this way).
func decompressToTemp(path string, kind compressionKind) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	var r io.Reader
	switch kind {
	case kindGzip:
		gz, err := pgzip.NewReader(src)
		if err != nil {
			return "", err
		}
		defer gz.Close()
		r = gz
	case kindBzip2:
		r = bzip2.NewReader(src)
	}

	tmp, err := os.CreateTemp("", "logscope-*.log")
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	buf := make([]byte, 256*1024)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := tmp.Write(buf[:n]); werr != nil {
				os.Remove(tmp.Name())
				return "", werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			os.Remove(tmp.Name())
			return "", rerr
		}
	}
	return tmp.Name(), nil
}
