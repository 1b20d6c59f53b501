package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/substantialcattle5/bulkmv/internal/pathlist"
)

// Classify reports the coarse type of path without following a final
// symlink, so a link is renamed as a link.
func Classify(path string) (pathlist.EntryType, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pathlist.TypeError, fmt.Errorf("path does not exist: %s", path)
		}
		if os.IsPermission(err) {
			return pathlist.TypeError, fmt.Errorf("permission denied: %s", path)
		}
		return pathlist.TypeError, fmt.Errorf("error accessing path: %w", err)
	}
	if info.IsDir() {
		return pathlist.TypeDirectory, nil
	}
	return pathlist.TypeRegular, nil
}

// Exists reports whether something, including a dangling symlink, is bound
// to path.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Digest returns the BLAKE3 digest of a regular file's content.
func Digest(path string) ([32]byte, error) {
	var sum [32]byte
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sum, fmt.Errorf("file not found at %s", path)
		}
		return sum, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	h := blake3.New()
	if _, err := io.Copy(h, file); err != nil {
		return sum, fmt.Errorf("error reading %s: %w", path, err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// SameContent reports whether two regular files hold identical bytes. Files
// of different size are never read; otherwise both are digested
// concurrently.
func SameContent(a, b string) (bool, error) {
	infoA, err := verifyRegular(a)
	if err != nil {
		return false, err
	}
	infoB, err := verifyRegular(b)
	if err != nil {
		return false, err
	}
	if os.SameFile(infoA, infoB) {
		return true, nil
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	var sumA, sumB [32]byte
	var g errgroup.Group
	g.Go(func() (err error) {
		sumA, err = Digest(a)
		return err
	})
	g.Go(func() (err error) {
		sumB, err = Digest(b)
		return err
	})
	if err := g.Wait(); err != nil {
		return false, err
	}
	return bytes.Equal(sumA[:], sumB[:]), nil
}

func verifyRegular(path string) (os.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file does not exist: %s", path)
		}
		return nil, fmt.Errorf("error accessing file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	return info, nil
}
