package sched

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/substantialcattle5/bulkmv/internal/pathlist"
)

func list(t *testing.T, paths ...string) *pathlist.List {
	t.Helper()
	l, err := pathlist.FromStrings(paths, 0)
	require.NoError(t, err)
	t.Cleanup(l.Release)
	return l
}

func numbered(n int, format string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf(format, (i*7919)%n)
	}
	return out
}

func regular(string) (pathlist.EntryType, error) { return pathlist.TypeRegular, nil }

func TestNewClampsWorkers(t *testing.T) {
	p := New(1000)
	defer p.Close()
	assert.Equal(t, MaxWorkers, p.Workers())

	q := New(0)
	defer q.Close()
	assert.GreaterOrEqual(t, q.Workers(), 1)
}

func TestDispatchCoversEveryPosition(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 8} {
		t.Run(fmt.Sprint(workers), func(t *testing.T) {
			p := New(workers)
			defer p.Close()

			old := list(t, numbered(103, "dir//f%03d")...)
			next := list(t, numbered(103, "./out/g%03d")...)
			job := &Job{Old: old, New: next, Stat: regular, Mask: 255}

			ranges := p.Dispatch(TaskNormalize, old.Len(), job)
			require.NotEmpty(t, ranges)
			assert.Equal(t, 0, ranges[0].Start)
			assert.Equal(t, old.Len(), ranges[len(ranges)-1].End)
			for i := range old.Len() {
				assert.NotContains(t, old.At(i).String(), "//")
				assert.NotContains(t, next.At(i).String(), "./")
				assert.Equal(t, pathlist.TypeRegular, old.At(i).Type)
			}

			old.PrepareIndex()
			next.PrepareIndex()
			p.Dispatch(TaskHash, old.Len(), job)
			for i := range old.Len() {
				assert.Equal(t, old.At(i).Hash&255, old.Index()[i])
				assert.NotZero(t, next.At(i).Hash)
			}

			p.Dispatch(TaskDiff, old.Len(), job)
			assert.Equal(t, old.Len(), Sum(job))
		})
	}
}

func TestDiffOnIdenticalLists(t *testing.T) {
	p := New(4)
	defer p.Close()
	paths := numbered(50, "same/%d")
	job := &Job{Old: list(t, paths...), New: list(t, paths...), Stat: regular, Mask: 63}

	p.Dispatch(TaskNormalize, len(paths), job)
	job.Old.PrepareIndex()
	job.New.PrepareIndex()
	p.Dispatch(TaskHash, len(paths), job)
	p.Dispatch(TaskDiff, len(paths), job)
	assert.Zero(t, Sum(job))
}

func TestSortPositionsMatchesSequential(t *testing.T) {
	paths := numbered(997, "p/%04d")
	want := slices.Clone(paths)
	slices.Sort(want)

	for workers := 1; workers <= 8; workers++ {
		p := New(workers)
		l := list(t, paths...)
		perm := p.SortPositions(l)
		l.Permute(perm)
		assert.Equal(t, want, l.Strings(), "workers=%d", workers)
		p.Close()
	}
}

func TestDispatchReusesWorkers(t *testing.T) {
	p := New(4)
	defer p.Close()
	l := list(t, numbered(40, "x%d")...)
	job := &Job{Old: l, New: l}
	l.PrepareIndex()
	for range 200 {
		p.Dispatch(TaskDiff, l.Len(), job)
		require.Zero(t, Sum(job))
	}
}

func TestTaskPanicSurfacesAfterBarrier(t *testing.T) {
	p := New(4)
	defer p.Close()
	l := list(t, numbered(16, "x%d")...)
	job := &Job{Old: l, Stat: func(string) (pathlist.EntryType, error) { panic("stat exploded") }}

	assert.Panics(t, func() { p.Dispatch(TaskNormalize, l.Len(), job) })

	// The pool stays usable.
	job.Stat = regular
	assert.NotPanics(t, func() { p.Dispatch(TaskNormalize, l.Len(), job) })
}

func TestCloseIsIdempotentAndFallsBackInline(t *testing.T) {
	p := New(4)
	p.Close()
	p.Close()

	l := list(t, "b", "a", "c")
	perm := p.SortPositions(l)
	assert.Equal(t, []uint32{1, 0, 2}, perm)
}

func TestDispatchEmpty(t *testing.T) {
	p := New(2)
	defer p.Close()
	assert.Nil(t, p.Dispatch(TaskHash, 0, &Job{}))
}
