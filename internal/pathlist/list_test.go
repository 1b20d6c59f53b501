package pathlist

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/substantialcattle5/bulkmv/internal/hashindex"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a", "a"},
		{"a/b", "a/b"},
		{"a//b", "a/b"},
		{"./a", "a"},
		{"a/./b", "a/b"},
		{"a/b/", "a/b"},
		{"a/b///", "a/b"},
		{"/abs/path", "/abs/path"},
		{"//abs//path/", "/abs/path"},
		{"/./x", "/x"},
		{"././a/./", "a"},
		{".hidden/./file", ".hidden/file"},
		{"a/../b", "a/../b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize([]byte(tt.in))
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, p := range []string{"a//b/./c/", "/x/y/", "./z"} {
		once := string(Normalize([]byte(p)))
		twice := string(Normalize([]byte(once)))
		assert.Equal(t, once, twice)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"plain", "file.txt", nil},
		{"empty", "", ErrEmpty},
		{"dot", ".", ErrEmpty},
		{"dots and slashes", "./././", ErrEmpty},
		{"root", "/", ErrEmpty},
		{"newline", "a\nb", ErrNewline},
		{"carriage return", "a\rb", ErrNewline},
		{"nul", "a\x00b", ErrNul},
		{"too long", strings.Repeat("x", 4096), ErrTooLong},
		{"longest allowed", strings.Repeat("x", 4095), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.in))
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFromStringsReportsLine(t *testing.T) {
	_, err := FromStrings([]string{"a", "b", ""}, 0)
	require.Error(t, err)

	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, 3, inErr.Line)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestAppendKeepsSpareByte(t *testing.T) {
	l := New(1, 0)
	defer l.Release()
	require.NoError(t, l.AppendString("dir", TypeDirectory))

	e := l.At(0)
	assert.Equal(t, len(e.Path)+1, cap(e.Path))
}

func statFrom(types map[string]EntryType) StatFunc {
	return func(p string) (EntryType, error) {
		typ, ok := types[p]
		if !ok {
			return TypeError, errors.New("no such file")
		}
		return typ, nil
	}
}

func TestNormalizeRangeClassifies(t *testing.T) {
	old, err := FromStrings([]string{"./docs//", "a.txt", "gone"}, 0)
	require.NoError(t, err)
	defer old.Release()
	next, err := FromStrings([]string{"manual", "b.txt/", "still-gone"}, 0)
	require.NoError(t, err)
	defer next.Release()

	stat := statFrom(map[string]EntryType{"docs": TypeDirectory, "a.txt": TypeRegular})
	NormalizeRange(old, next, 0, old.Len(), stat)

	assert.Equal(t, []string{"docs/", "a.txt", "gone"}, old.Strings())
	assert.Equal(t, []string{"manual/", "b.txt", "still-gone"}, next.Strings())
	assert.Equal(t, TypeDirectory, next.At(0).Type)
	assert.False(t, old.At(2).Valid())
	assert.False(t, next.At(2).Valid())

	// A second pass leaves classified entries as they are.
	NormalizeRange(old, next, 0, old.Len(), func(string) (EntryType, error) {
		t.Fatal("stat called for a classified entry")
		return TypeError, nil
	})
	assert.Equal(t, []string{"docs/", "a.txt", "gone"}, old.Strings())
	assert.Equal(t, []string{"manual/", "b.txt", "still-gone"}, next.Strings())
}

func TestHashAndDiffRange(t *testing.T) {
	old, _ := FromStrings([]string{"a", "b", "c", "d"}, 0)
	next, _ := FromStrings([]string{"a", "x", "c", "y"}, 0)
	defer old.Release()
	defer next.Release()

	const mask = 15
	old.PrepareIndex()
	next.PrepareIndex()
	HashRange(old, 0, 2, mask)
	HashRange(old, 2, 4, mask)
	HashRange(next, 0, 4, mask)

	for i := range old.Len() {
		e := old.At(i)
		assert.Equal(t, hashindex.Hash(e.Path), e.Hash)
		assert.Equal(t, e.Hash&mask, old.Index()[i])
	}

	assert.Equal(t, 1, DiffRange(old, next, 0, 2))
	assert.Equal(t, 2, DiffRange(old, next, 0, 4))

	old.At(3).Type = TypeError
	assert.Equal(t, 1, DiffRange(old, next, 0, 4), "invalid positions are not counted")
}

func TestSwapAndPermuteKeepIndexAligned(t *testing.T) {
	l, _ := FromStrings([]string{"a", "b", "c"}, 0)
	defer l.Release()
	l.PrepareIndex()
	HashRange(l, 0, l.Len(), 1023)
	bucketOf := func(p string) uint32 { return hashindex.Hash([]byte(p)) & 1023 }

	l.Swap(0, 2)
	assert.Equal(t, []string{"c", "b", "a"}, l.Strings())
	assert.Equal(t, []uint32{bucketOf("c"), bucketOf("b"), bucketOf("a")}, l.Index())

	l.Permute([]uint32{2, 0, 1})
	assert.Equal(t, []string{"a", "c", "b"}, l.Strings())
	assert.Equal(t, []uint32{bucketOf("a"), bucketOf("c"), bucketOf("b")}, l.Index())
}

func TestResetReusesList(t *testing.T) {
	l, _ := FromStrings([]string{"one", "two"}, 0)
	defer l.Release()
	l.Reset()
	assert.Zero(t, l.Len())
	assert.Nil(t, l.Index())
	require.NoError(t, l.AppendString("three", TypeRegular))
	assert.Equal(t, []string{"three"}, l.Strings())
}

func TestCloneIsIndependent(t *testing.T) {
	l, _ := FromStrings([]string{"a", "b"}, 0)
	defer l.Release()
	l.At(0).Type = TypeDirectory
	l.At(0).Path = append(l.At(0).Path, '/')

	c := l.Clone(0)
	defer c.Release()
	assert.Equal(t, []string{"a/", "b"}, c.Strings())
	assert.Equal(t, TypeDirectory, c.At(0).Type)

	c.At(1).Type = TypeError
	c.At(1).Path[0] = 'z'
	assert.Equal(t, "b", l.At(1).String())
	assert.True(t, l.At(1).Valid())
}
