package arena

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoundsToPageSize(t *testing.T) {
	page := os.Getpagesize()
	tests := []struct {
		name    string
		minSize int
		want    int
	}{
		{"zero uses one page", 0, page},
		{"one byte", 1, page},
		{"exact page", page, page},
		{"page plus one", page + 1, 2 * page},
		{"large page multiple", LargePageSize + 1, 2 * LargePageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.minSize)
			defer a.Destroy()
			assert.Equal(t, tt.want, a.SegmentSize())
		})
	}
}

func TestPushIsZeroedAndIsolated(t *testing.T) {
	a := New(64)
	defer a.Destroy()

	first := a.Push(8)
	second := a.Push(8)
	require.Len(t, first, 8)
	assert.Equal(t, 8, cap(first))
	assert.Equal(t, make([]byte, 8), first)

	copy(first, "abcdefgh")
	_ = append(first, 'x')
	assert.Equal(t, make([]byte, 8), second, "append on a block must not write into its neighbour")
}

func TestPushChainsNewSegments(t *testing.T) {
	page := os.Getpagesize()
	a := New(page)
	defer a.Destroy()

	for i := 0; i < 3*page; i += 100 {
		b := a.Push(100)
		b[0] = byte(i)
	}
	st := a.Stats()
	assert.GreaterOrEqual(t, st.Segments, 3)
	assert.Equal(t, st.Segments*page, st.Committed)
}

func TestPushLargerThanSegment(t *testing.T) {
	page := os.Getpagesize()
	a := New(page)
	defer a.Destroy()

	b := a.Push(3 * page)
	require.Len(t, b, 3*page)
	b[len(b)-1] = 1
	assert.Equal(t, 2, a.Stats().Segments)
}

func TestResetReusesMemory(t *testing.T) {
	a := New(256)
	defer a.Destroy()

	for range 64 {
		copy(a.Push(64), "dirty")
	}
	before := a.Stats()
	a.Reset()

	after := a.Stats()
	assert.Equal(t, before.Committed, after.Committed)
	assert.Zero(t, after.Used)
	assert.Equal(t, make([]byte, 64), a.Push(64))

	for range 63 {
		a.Push(64)
	}
	assert.Equal(t, before.Segments, a.Stats().Segments, "reset segments are reused before new ones are linked")
}

func TestPushIndexedResolves(t *testing.T) {
	page := os.Getpagesize()
	a := New(page)
	defer a.Destroy()

	offs := make([]Offset, 0, 100)
	for i := range 100 {
		off := a.PushIndexed(1024)
		copy(a.Bytes(off, 1024), fmt.Sprintf("block-%03d", i))
		offs = append(offs, off)
	}
	for i, off := range offs {
		assert.Equal(t, fmt.Sprintf("block-%03d", i), string(a.Bytes(off, 9)))
	}
	assert.Greater(t, offs[len(offs)-1].Segment(), 0)
}

func TestOversizedPushIsFatal(t *testing.T) {
	var reported string
	prev := Fatal
	Fatal = func(format string, args ...any) { reported = fmt.Sprintf(format, args...) }
	t.Cleanup(func() { Fatal = prev })

	a := New(64)
	defer a.Destroy()

	assert.PanicsWithValue(t, ErrOutOfMemory, func() { a.Push(MaxPush + 1) })
	assert.Contains(t, reported, fmt.Sprint(MaxPush+1))
}

func TestPoolRefsSurviveGrowth(t *testing.T) {
	type node struct {
		value int
		next  Ref
	}
	p := NewPool[node](0)

	var prev Ref
	for i := range 3 * poolBlock {
		ref, n := p.Alloc()
		n.value = i
		n.next = prev
		prev = ref
	}
	require.Equal(t, 3*poolBlock, p.Len())

	count := 0
	for r := prev; r != 0; r = p.At(r).next {
		assert.Equal(t, 3*poolBlock-1-count, p.At(r).value)
		count++
	}
	assert.Equal(t, 3*poolBlock, count)

	p.Reset()
	ref, n := p.Alloc()
	assert.Equal(t, Ref(1), ref)
	assert.Zero(t, n.value)
}
