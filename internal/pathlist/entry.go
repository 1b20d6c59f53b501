// Package pathlist holds the ordered path lists a rename job works on and the
// range-bounded passes (normalize, hash, diff) the worker pool runs over them.
package pathlist

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/substantialcattle5/bulkmv/internal/constants"
)

// EntryType is the coarse file type of an entry.
type EntryType uint8

const (
	TypeUnknown EntryType = iota
	TypeRegular
	TypeDirectory
	TypeError
)

func (t EntryType) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeDirectory:
		return "directory"
	case TypeError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is one path. Path points into the owning list's arena and carries
// one spare byte of capacity for a trailing separator.
type Entry struct {
	Path []byte
	Hash uint32
	Type EntryType
}

// Valid reports whether the entry still takes part in the job.
func (e *Entry) Valid() bool { return e.Type != TypeError }

// IsDir reports whether the entry was classified as a directory.
func (e *Entry) IsDir() bool { return e.Type == TypeDirectory }

func (e *Entry) String() string { return string(e.Path) }

// Equal compares two entries by hash, then by bytes.
func Equal(a, b *Entry) bool {
	return a.Hash == b.Hash && bytes.Equal(a.Path, b.Path)
}

// Compare orders entries byte-lexicographically.
func Compare(a, b *Entry) int {
	return bytes.Compare(a.Path, b.Path)
}

var (
	ErrEmpty   = errors.New("empty path or only '.' and '/'")
	ErrTooLong = fmt.Errorf("path longer than %d bytes", constants.MaxPathLen-1)
	ErrNewline = errors.New("path contains a line break")
	ErrNul     = errors.New("path contains a NUL byte")
)

// InputError describes a rejected raw path. Line is 1-based, or 0 when the
// source has no line numbers.
type InputError struct {
	Line int
	Path string
	Err  error
}

func (e *InputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %q: %v", e.Line, e.Path, e.Err)
	}
	return fmt.Sprintf("%q: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Validate checks a raw path before it is admitted into a list.
func Validate(p []byte) error {
	switch {
	case len(p) >= constants.MaxPathLen:
		return ErrTooLong
	case bytes.IndexAny(p, "\n\r") >= 0:
		return ErrNewline
	case bytes.IndexByte(p, 0) >= 0:
		return ErrNul
	case len(bytes.Trim(p, "./")) == 0:
		return ErrEmpty
	}
	return nil
}

// Normalize rewrites p in place: repeated separators collapse, "." segments
// (leading or embedded) disappear and any trailing separator is dropped. The
// result aliases p and keeps its capacity.
func Normalize(p []byte) []byte {
	abs := len(p) > 0 && p[0] == constants.Separator
	w := 0
	if abs {
		w = 1
	}
	for i := 0; i < len(p); {
		for i < len(p) && p[i] == constants.Separator {
			i++
		}
		start := i
		for i < len(p) && p[i] != constants.Separator {
			i++
		}
		seg := p[start:i]
		if len(seg) == 0 || (len(seg) == 1 && seg[0] == '.') {
			continue
		}
		if w > 1 || (w == 1 && !abs) {
			p[w] = constants.Separator
			w++
		}
		w += copy(p[w:], seg)
	}
	return p[:w]
}
