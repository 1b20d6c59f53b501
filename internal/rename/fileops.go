package rename

import (
	"os"
	"strings"

	"github.com/substantialcattle5/bulkmv/internal/fs"
	"github.com/substantialcattle5/bulkmv/internal/pathlist"
)

// FileOps is the filesystem surface the engine drives.
type FileOps interface {
	Classify(path string) (pathlist.EntryType, error)
	Exists(path string) (bool, error)
	Rename(oldPath, newPath string) error
	// Exchange swaps the files bound to a and b. Both must exist.
	Exchange(a, b string) error
	Remove(path string) error
	SameContent(a, b string) (bool, error)
}

// OSFileOps operates on the real filesystem. Trailing separators on
// directory entries are dropped before every call so symlinks are never
// followed.
type OSFileOps struct{}

var _ FileOps = OSFileOps{}

func (OSFileOps) Classify(path string) (pathlist.EntryType, error) {
	return fs.Classify(bare(path))
}

func (OSFileOps) Exists(path string) (bool, error) {
	return fs.Exists(bare(path))
}

func (OSFileOps) Rename(oldPath, newPath string) error {
	return os.Rename(bare(oldPath), bare(newPath))
}

func (OSFileOps) Exchange(a, b string) error {
	return exchange(bare(a), bare(b))
}

func (OSFileOps) Remove(path string) error {
	return os.Remove(bare(path))
}

func (OSFileOps) SameContent(a, b string) (bool, error) {
	return fs.SameContent(bare(a), bare(b))
}

func bare(path string) string {
	if len(path) > 1 {
		return strings.TrimSuffix(path, "/")
	}
	return path
}
