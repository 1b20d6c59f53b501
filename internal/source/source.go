// Package source builds the old list from a directory, a line stream or
// command-line arguments.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/substantialcattle5/bulkmv/internal/constants"
	"github.com/substantialcattle5/bulkmv/internal/pathlist"
)

// Options controls how invalid entries are handled.
type Options struct {
	ArenaSize int
	// Strict turns the first invalid entry into an error. Lists that must
	// stay aligned with another list are read strictly.
	Strict bool
	// Hidden includes dot files in directory listings.
	Hidden bool
}

// Result is a list plus the entries dropped while building it.
type Result struct {
	List    *pathlist.List
	Dropped []error
}

func (o Options) add(res *Result, raw string, line int, typ pathlist.EntryType) error {
	if err := res.List.AppendString(raw, typ); err != nil {
		inErr := &pathlist.InputError{Line: line, Path: raw, Err: err}
		if o.Strict {
			return inErr
		}
		res.Dropped = append(res.Dropped, inErr)
	}
	return nil
}

// FromDir lists the entries of dir in name order. Entry types come from the
// directory listing, so no extra stat is needed.
func FromDir(dir string, opts Options) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", dir, err)
	}
	res := &Result{List: pathlist.New(len(entries), opts.ArenaSize)}
	for _, entry := range entries {
		name := entry.Name()
		if !opts.Hidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := name
		if filepath.Clean(dir) != "." {
			path = filepath.Join(dir, name)
		}
		typ := pathlist.TypeRegular
		if entry.IsDir() {
			typ = pathlist.TypeDirectory
		}
		if err := opts.add(res, path, 0, typ); err != nil {
			res.List.Release()
			return nil, err
		}
	}
	return res, nil
}

// FromReader reads one path per line. A trailing carriage return is
// removed; empty lines count as invalid entries.
func FromReader(r io.Reader, opts Options) (*Result, error) {
	res := &Result{List: pathlist.New(0, opts.ArenaSize)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, constants.MaxPathLen), 2*constants.MaxPathLen)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSuffix(scanner.Text(), "\r")
		if err := opts.add(res, raw, line, pathlist.TypeUnknown); err != nil {
			res.List.Release()
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		res.List.Release()
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &pathlist.InputError{Line: line + 1, Err: pathlist.ErrTooLong}
		}
		return nil, fmt.Errorf("error reading list: %w", err)
	}
	return res, nil
}

// FromFile is FromReader over a file; "-" reads standard input.
func FromFile(path string, opts Options) (*Result, error) {
	if path == "-" {
		return FromReader(os.Stdin, opts)
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("list file not found at %s", path)
		}
		return nil, fmt.Errorf("error opening list file: %w", err)
	}
	defer file.Close()
	return FromReader(file, opts)
}

// FromArgs uses each argument as a path.
func FromArgs(args []string, opts Options) (*Result, error) {
	res := &Result{List: pathlist.New(len(args), opts.ArenaSize)}
	for i, arg := range args {
		if err := opts.add(res, arg, i+1, pathlist.TypeUnknown); err != nil {
			res.List.Release()
			return nil, err
		}
	}
	return res, nil
}

// FromLines is FromArgs for lines read back from an editor buffer.
func FromLines(lines []string, opts Options) (*Result, error) {
	return FromArgs(lines, opts)
}
