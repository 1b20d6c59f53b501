package source

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/substantialcattle5/bulkmv/internal/pathlist"
	"github.com/substantialcattle5/bulkmv/testutil"
)

func TestFromDir(t *testing.T) {
	dir := t.TempDir()
	testutil.Populate(t, dir, map[string]string{
		"b.txt":   "B",
		"a.txt":   "A",
		"sub/":    "",
		".hidden": "H",
	})

	res, err := FromDir(dir, Options{})
	require.NoError(t, err)
	defer res.List.Release()

	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "sub"),
	}, res.List.Strings())
	assert.Equal(t, pathlist.TypeDirectory, res.List.At(2).Type)
	assert.Equal(t, pathlist.TypeRegular, res.List.At(0).Type)

	res, err = FromDir(dir, Options{Hidden: true})
	require.NoError(t, err)
	defer res.List.Release()
	assert.Equal(t, 4, res.List.Len())
}

func TestFromDirCurrent(t *testing.T) {
	dir := t.TempDir()
	testutil.Populate(t, dir, map[string]string{"x": "X"})
	testutil.Chdir(t, dir)

	res, err := FromDir(".", Options{})
	require.NoError(t, err)
	defer res.List.Release()
	assert.Equal(t, []string{"x"}, res.List.Strings())
}

func TestFromReader(t *testing.T) {
	input := "first\r\nsecond\n\nthird"

	res, err := FromReader(strings.NewReader(input), Options{})
	require.NoError(t, err)
	defer res.List.Release()
	assert.Equal(t, []string{"first", "second", "third"}, res.List.Strings())
	require.Len(t, res.Dropped, 1)

	var inErr *pathlist.InputError
	require.True(t, errors.As(res.Dropped[0], &inErr))
	assert.Equal(t, 3, inErr.Line)

	_, err = FromReader(strings.NewReader(input), Options{Strict: true})
	assert.ErrorIs(t, err, pathlist.ErrEmpty)
}

func TestFromReaderLongLine(t *testing.T) {
	long := strings.Repeat("x", 3*4096)
	_, err := FromReader(strings.NewReader("ok\n"+long+"\n"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, pathlist.ErrTooLong)
}

func TestFromArgs(t *testing.T) {
	res, err := FromArgs([]string{"a", "b/./c", "."}, Options{})
	require.NoError(t, err)
	defer res.List.Release()
	assert.Equal(t, []string{"a", "b/./c"}, res.List.Strings())
	assert.Len(t, res.Dropped, 1)

	_, err = FromArgs([]string{"a", "."}, Options{Strict: true})
	assert.ErrorIs(t, err, pathlist.ErrEmpty)
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "none"), Options{})
	assert.Error(t, err)
}
