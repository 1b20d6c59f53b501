// Package arena provides bump-pointer allocation for path bytes and
// index-addressed node pools.
//
// An Arena hands out byte blocks carved sequentially from large segments.
// Nothing is freed individually: Reset rewinds every segment for reuse and
// Destroy releases them all at once. When a segment runs out a new one is
// linked transparently, so Push never fails short of the process running out
// of memory, which is fatal.
package arena

import (
	"errors"
	"fmt"
	"os"

	"github.com/substantialcattle5/bulkmv/internal/constants"
)

const (
	// LargePageSize is the granularity used for segments big enough that huge
	// pages pay off.
	LargePageSize = 2 << 20

	// MaxPush is the largest single request Push accepts.
	MaxPush = 1 << 30

	// offsetBits splits an Offset into segment number and byte offset.
	offsetBits = 32
)

// ErrOutOfMemory is the panic value used after Fatal returns.
var ErrOutOfMemory = errors.New("arena: out of memory")

// Fatal reports an unrecoverable allocation failure and terminates the
// process. Tests replace it to observe the failure instead.
var Fatal = func(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "bulkmv: "+format+"\n", args...)
	os.Exit(constants.ExitFatal)
}

// Offset is an arena-relative reference returned by PushIndexed. It stays
// valid across Reset of unrelated segments but means nothing to another Arena.
type Offset uint64

// Segment returns the segment number encoded in the offset.
func (o Offset) Segment() int { return int(o >> offsetBits) }

// Pos returns the byte position inside the segment.
func (o Offset) Pos() int { return int(o & (1<<offsetBits - 1)) }

type segment struct {
	buf    []byte
	used   int
	mapped bool
}

// Arena is a chain of equally sized segments. It is not safe for concurrent
// use; each PathList owns its own arena.
type Arena struct {
	segSize int
	segs    []*segment
	cur     int
}

// Stats describes the memory held by an arena.
type Stats struct {
	Segments  int
	Committed int
	Used      int
}

// New reserves the first segment of at least minSize bytes.
func New(minSize int) *Arena {
	if minSize <= 0 {
		minSize = os.Getpagesize()
	}
	if minSize > MaxPush {
		fatal("arena: cannot reserve %d bytes", minSize)
	}
	a := &Arena{segSize: segmentSize(minSize)}
	a.segs = append(a.segs, newSegment(a.segSize))
	return a
}

// SegmentSize returns the size every regular segment is created with.
func (a *Arena) SegmentSize() int { return a.segSize }

// Push returns size zeroed bytes. The returned slice has cap == len so an
// append never spills into the neighbouring allocation.
func (a *Arena) Push(size int) []byte {
	off := a.PushIndexed(size)
	seg := a.segs[off.Segment()]
	pos := off.Pos()
	return seg.buf[pos : pos+size : pos+size]
}

// PushIndexed allocates like Push but returns the arena-relative offset of
// the block instead of the block itself.
func (a *Arena) PushIndexed(size int) Offset {
	if size < 0 || size > MaxPush {
		fatal("arena: cannot allocate %d bytes", size)
	}
	seg := a.segs[a.cur]
	if len(seg.buf)-seg.used < size {
		seg = a.advance(size)
	}
	off := Offset(uint64(a.cur)<<offsetBits | uint64(seg.used))
	seg.used += size
	return off
}

// Bytes resolves an offset produced by PushIndexed on this arena.
func (a *Arena) Bytes(off Offset, size int) []byte {
	seg := a.segs[off.Segment()]
	pos := off.Pos()
	return seg.buf[pos : pos+size : pos+size]
}

// advance moves to the next segment with room for size bytes, reusing
// segments left over from before a Reset and linking a new one otherwise.
func (a *Arena) advance(size int) *segment {
	for a.cur+1 < len(a.segs) {
		a.cur++
		if seg := a.segs[a.cur]; len(seg.buf)-seg.used >= size {
			return seg
		}
	}
	n := a.segSize
	if size > n {
		n = segmentSize(size)
	}
	seg := newSegment(n)
	a.segs = append(a.segs, seg)
	a.cur = len(a.segs) - 1
	return seg
}

// Reset rewinds every segment to empty. Memory is kept and cleared so later
// pushes still hand out zeroed blocks.
func (a *Arena) Reset() {
	for _, seg := range a.segs {
		clear(seg.buf[:seg.used])
		seg.used = 0
	}
	a.cur = 0
}

// Destroy releases every segment. The arena must not be used afterwards and
// no slice obtained from it may be touched again.
func (a *Arena) Destroy() {
	for _, seg := range a.segs {
		if seg.mapped {
			if err := release(seg.buf); err != nil {
				fatal("arena: release %d bytes: %v", len(seg.buf), err)
			}
		}
		seg.buf = nil
	}
	a.segs = nil
	a.cur = 0
}

// Stats reports how much memory the arena holds and uses.
func (a *Arena) Stats() Stats {
	var st Stats
	for _, seg := range a.segs {
		st.Segments++
		st.Committed += len(seg.buf)
		st.Used += seg.used
	}
	return st
}

func newSegment(size int) *segment {
	buf, mapped, err := reserve(size)
	if err != nil {
		fatal("arena: reserve %d bytes: %v", size, err)
	}
	if size >= LargePageSize {
		adviseLarge(buf)
	}
	return &segment{buf: buf, mapped: mapped}
}

// segmentSize rounds n up to the page size, or to a multiple of
// LargePageSize once n is at least that big.
func segmentSize(n int) int {
	unit := os.Getpagesize()
	if n >= LargePageSize {
		unit = LargePageSize
	}
	return (n + unit - 1) / unit * unit
}

func fatal(format string, args ...any) {
	Fatal(format, args...)
	panic(ErrOutOfMemory)
}
