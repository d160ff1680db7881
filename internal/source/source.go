// Package source implements the input contract: locating worker.log files in
// a run directory tree and reading them tolerantly.
package source

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/crimson-sun/raftlens/internal/model"
)

const (
	logFileName     = "worker.log"
	memberDirSuffix = "-member"
)

// Discover walks root recursively and returns every file literally named
// worker.log whose parent directory name ends with "-member", in sorted path
// order. Everything else is ignored, even if it looks like a log.
func Discover(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != logFileName {
			return nil
		}
		if strings.HasSuffix(filepath.Base(filepath.Dir(path)), memberDirSuffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover worker logs: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Open opens a worker log for reading. Invalid UTF-8 byte sequences are
// substituted with U+FFFD rather than aborting the read.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open worker log: %w", err)
	}
	return &replacingReader{
		Reader: transform.NewReader(f, unicode.UTF8.NewDecoder()),
		closer: f,
	}, nil
}

type replacingReader struct {
	io.Reader
	closer io.Closer
}

func (r *replacingReader) Close() error { return r.closer.Close() }

// SeatFromDir derives a best-effort observer seat from a member directory
// name like "A1_W1-18.132.45.35-member". Banner lines in the file take
// precedence over anything derived here; a name that doesn't fit the shape
// yields an empty seat.
func SeatFromDir(dir string) model.ObserverSeat {
	name := filepath.Base(dir)
	if !strings.HasSuffix(name, memberDirSuffix) {
		return model.ObserverSeat{}
	}
	label, rest, ok := strings.Cut(name, "-")
	if !ok || !looksLikeLabel(label) {
		return model.ObserverSeat{}
	}

	pub := strings.TrimSuffix(rest, memberDirSuffix)
	pub = strings.TrimSuffix(pub, "-")
	if i := strings.LastIndex(pub, "-"); i >= 0 {
		pub = pub[i+1:]
	}
	if !looksLikeIPv4(pub) {
		pub = ""
	}

	return model.ObserverSeat{Label: label, PublicAddr: pub}
}

var (
	seatLabelShape = regexp.MustCompile(`^A\d+_W\d+$`)
	ipv4Shape      = regexp.MustCompile(`^\d{1,3}(?:\.\d{1,3}){3}$`)
)

func looksLikeLabel(s string) bool {
	return seatLabelShape.MatchString(s)
}

func looksLikeIPv4(s string) bool {
	return ipv4Shape.MatchString(s)
}
