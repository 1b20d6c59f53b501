// Package psort sorts a slice by stable-sorting disjoint runs independently
// and then merging them with a k-way heap merge.
package psort

import "slices"

// Range is a half-open interval [Start, End) of slice positions.
type Range struct {
	Start int
	End   int
}

// Len returns End-Start.
func (r Range) Len() int { return r.End - r.Start }

// Partition splits [0,length) into at most parts contiguous ranges of equal
// size; the last range absorbs the remainder. Empty ranges are never
// returned.
func Partition(length, parts int) []Range {
	if length <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > length {
		parts = length
	}
	size := length / parts
	out := make([]Range, parts)
	for i := range out {
		out[i] = Range{Start: i * size, End: (i + 1) * size}
	}
	out[parts-1].End = length
	return out
}

// SortRun stable-sorts one run in place.
func SortRun[T any](run []T, cmp func(a, b T) int) {
	slices.SortStableFunc(run, cmp)
}

type head struct {
	run int
	pos int
}

// Merge combines sorted, contiguous runs of items into one sorted sequence
// written back over the span the runs cover. Equal elements keep the order of
// their runs, so merging stable runs yields a stable sort.
func Merge[T any](items []T, runs []Range, cmp func(a, b T) int) {
	if len(runs) < 2 {
		return
	}
	base := runs[0].Start
	total := runs[len(runs)-1].End - base
	out := make([]T, 0, total)

	heap := make([]head, 0, len(runs))
	for i, r := range runs {
		if r.Len() > 0 {
			heap = append(heap, head{run: i, pos: r.Start})
		}
	}
	less := func(a, b head) bool {
		if c := cmp(items[a.pos], items[b.pos]); c != 0 {
			return c < 0
		}
		return a.run < b.run
	}
	down := func(i int) {
		n := len(heap)
		for {
			l := 2*i + 1
			if l >= n {
				return
			}
			m := l
			if r := l + 1; r < n && less(heap[r], heap[l]) {
				m = r
			}
			if !less(heap[m], heap[i]) {
				return
			}
			heap[i], heap[m] = heap[m], heap[i]
			i = m
		}
	}
	for i := len(heap)/2 - 1; i >= 0; i-- {
		down(i)
	}

	for len(heap) > 0 {
		top := &heap[0]
		out = append(out, items[top.pos])
		top.pos++
		if top.pos == runs[top.run].End {
			last := len(heap) - 1
			heap[0] = heap[last]
			heap = heap[:last]
		}
		down(0)
	}
	copy(items[base:], out)
}

// Sort stable-sorts items using up to parts runs. Runs are sorted one after
// another; callers with a worker pool sort them concurrently and call Merge.
func Sort[T any](items []T, parts int, cmp func(a, b T) int) {
	runs := Partition(len(items), parts)
	for _, r := range runs {
		SortRun(items[r.Start:r.End], cmp)
	}
	Merge(items, runs, cmp)
}
