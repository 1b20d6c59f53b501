package rename

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/substantialcattle5/bulkmv/internal/pathlist"
)

// memFS is an in-memory FileOps. Directories are keys with a trailing "/".
type memFS struct {
	files map[string]string
	ops   []string
	fail  map[string]error
}

func newMemFS(files map[string]string) *memFS {
	return &memFS{files: maps.Clone(files), fail: map[string]error{}}
}

func key(p string) (string, bool) {
	trimmed := strings.TrimSuffix(p, "/")
	return trimmed, trimmed != p
}

func (m *memFS) lookup(p string) (string, bool) {
	k, _ := key(p)
	if _, ok := m.files[k]; ok {
		return k, true
	}
	if _, ok := m.files[k+"/"]; ok {
		return k + "/", true
	}
	return "", false
}

func (m *memFS) Classify(p string) (pathlist.EntryType, error) {
	k, ok := m.lookup(p)
	if !ok {
		return pathlist.TypeError, fmt.Errorf("no such file: %s", p)
	}
	if strings.HasSuffix(k, "/") {
		return pathlist.TypeDirectory, nil
	}
	return pathlist.TypeRegular, nil
}

func (m *memFS) Exists(p string) (bool, error) {
	_, ok := m.lookup(p)
	return ok, nil
}

func (m *memFS) Rename(a, b string) error {
	if err := m.fail[a]; err != nil {
		return err
	}
	ka, ok := m.lookup(a)
	if !ok {
		return fmt.Errorf("rename %s: no such file", a)
	}
	kb, _ := key(b)
	if strings.HasSuffix(ka, "/") {
		kb += "/"
	}
	content := m.files[ka]
	delete(m.files, ka)
	if existing, ok := m.lookup(b); ok {
		delete(m.files, existing)
	}
	m.files[kb] = content
	m.ops = append(m.ops, "rename "+a+" "+b)
	return nil
}

func (m *memFS) Exchange(a, b string) error {
	if err := m.fail[a]; err != nil {
		return err
	}
	ka, okA := m.lookup(a)
	kb, okB := m.lookup(b)
	if !okA || !okB {
		return errors.New("exchange needs two existing paths")
	}
	ca, cb := m.files[ka], m.files[kb]
	delete(m.files, ka)
	delete(m.files, kb)
	// The kind travels with the content.
	trimA, _ := key(ka)
	trimB, _ := key(kb)
	if strings.HasSuffix(kb, "/") {
		trimA += "/"
	}
	if strings.HasSuffix(ka, "/") {
		trimB += "/"
	}
	m.files[trimA] = cb
	m.files[trimB] = ca
	m.ops = append(m.ops, "exchange "+a+" "+b)
	return nil
}

func (m *memFS) Remove(p string) error {
	if err := m.fail[p]; err != nil {
		return err
	}
	k, ok := m.lookup(p)
	if !ok {
		return fmt.Errorf("remove %s: no such file", p)
	}
	delete(m.files, k)
	m.ops = append(m.ops, "remove "+p)
	return nil
}

func (m *memFS) SameContent(a, b string) (bool, error) {
	ka, okA := m.lookup(a)
	kb, okB := m.lookup(b)
	if !okA || !okB {
		return false, errors.New("missing file")
	}
	return m.files[ka] == m.files[kb], nil
}
