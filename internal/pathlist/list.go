package pathlist

import (
	"github.com/substantialcattle5/bulkmv/internal/arena"
	"github.com/substantialcattle5/bulkmv/internal/hashindex"
)

// List is an ordered sequence of entries plus a companion array holding each
// entry's bucket in the job's hash index. The two are always permuted
// together; the index array exists only after PrepareIndex.
type List struct {
	entries []Entry
	index   []uint32
	arena   *arena.Arena
}

// New returns an empty list whose path bytes are carved from an arena with
// segments of segSize bytes.
func New(expected, segSize int) *List {
	return &List{
		entries: make([]Entry, 0, expected),
		arena:   arena.New(segSize),
	}
}

// FromStrings builds a list of unclassified entries. It stops at the first
// invalid path.
func FromStrings(paths []string, segSize int) (*List, error) {
	l := New(len(paths), segSize)
	for i, p := range paths {
		if err := l.AppendString(p, TypeUnknown); err != nil {
			l.Release()
			return nil, &InputError{Line: i + 1, Path: p, Err: err}
		}
	}
	return l, nil
}

// Append validates raw and copies it into the arena.
func (l *List) Append(raw []byte, typ EntryType) error {
	if err := Validate(raw); err != nil {
		return err
	}
	buf := l.arena.Push(len(raw) + 1)
	n := copy(buf, raw)
	l.entries = append(l.entries, Entry{Path: buf[:n:len(buf)], Type: typ})
	return nil
}

// AppendString is Append for a string path.
func (l *List) AppendString(raw string, typ EntryType) error {
	if err := Validate([]byte(raw)); err != nil {
		return err
	}
	buf := l.arena.Push(len(raw) + 1)
	n := copy(buf, raw)
	l.entries = append(l.entries, Entry{Path: buf[:n:len(buf)], Type: typ})
	return nil
}

// Clone copies the entries, their types and hashes into a new list backed
// by its own arena. The bucket array is not copied.
func (l *List) Clone(segSize int) *List {
	c := New(len(l.entries), segSize)
	for i := range l.entries {
		e := &l.entries[i]
		buf := c.arena.Push(cap(e.Path))
		n := copy(buf, e.Path)
		c.entries = append(c.entries, Entry{Path: buf[:n:len(buf)], Hash: e.Hash, Type: e.Type})
	}
	return c
}

// Len returns the number of entries.
func (l *List) Len() int { return len(l.entries) }

// At returns a pointer to entry i; it stays valid until the list is
// appended to or released.
func (l *List) At(i int) *Entry { return &l.entries[i] }

// Index returns the bucket array, or nil before PrepareIndex.
func (l *List) Index() []uint32 { return l.index }

// PrepareIndex allocates the bucket array so HashRange can fill disjoint
// ranges of it concurrently.
func (l *List) PrepareIndex() {
	if len(l.index) != len(l.entries) {
		l.index = make([]uint32, len(l.entries))
	}
}

// Swap exchanges entries i and j together with their bucket slots.
func (l *List) Swap(i, j int) {
	l.entries[i], l.entries[j] = l.entries[j], l.entries[i]
	if l.index != nil {
		l.index[i], l.index[j] = l.index[j], l.index[i]
	}
}

// Permute reorders the list so that position k holds the entry previously
// at perm[k].
func (l *List) Permute(perm []uint32) {
	entries := make([]Entry, len(l.entries))
	for k, from := range perm {
		entries[k] = l.entries[from]
	}
	l.entries = entries
	if l.index != nil {
		index := make([]uint32, len(l.index))
		for k, from := range perm {
			index[k] = l.index[from]
		}
		l.index = index
	}
}

// Strings returns the paths of all entries.
func (l *List) Strings() []string {
	out := make([]string, len(l.entries))
	for i := range l.entries {
		out[i] = string(l.entries[i].Path)
	}
	return out
}

// ArenaStats reports the memory used for path bytes.
func (l *List) ArenaStats() arena.Stats { return l.arena.Stats() }

// Reset empties the list but keeps its arena for the next job.
func (l *List) Reset() {
	l.entries = l.entries[:0]
	l.index = nil
	l.arena.Reset()
}

// Release frees the arena. Entries must not be used afterwards.
func (l *List) Release() {
	l.entries = nil
	l.index = nil
	if l.arena != nil {
		l.arena.Destroy()
		l.arena = nil
	}
}

// StatFunc classifies an on-disk path.
type StatFunc func(path string) (EntryType, error)

// NormalizeRange normalizes old[start:end] and, when next is non-nil, the
// aligned entries of next. Unclassified old entries are classified through
// stat; a failed lookup marks the position as TypeError in both lists.
// Directories carry exactly one trailing separator and the aligned new entry
// follows the old entry's convention.
func NormalizeRange(old, next *List, start, end int, stat StatFunc) {
	for i := start; i < end; i++ {
		o := &old.entries[i]
		if o.Type == TypeError {
			if next != nil {
				next.entries[i].Type = TypeError
			}
			continue
		}
		o.Path = Normalize(o.Path)
		if o.Type == TypeUnknown {
			typ, err := stat(string(o.Path))
			if err != nil {
				typ = TypeError
			}
			o.Type = typ
		}
		if o.Type == TypeDirectory {
			o.Path = append(o.Path, '/')
		}
		if next == nil {
			continue
		}
		n := &next.entries[i]
		n.Path = Normalize(n.Path)
		n.Type = o.Type
		if o.Type == TypeDirectory {
			n.Path = append(n.Path, '/')
		}
	}
}

// HashRange computes the content hash of l[start:end] and stores each
// entry's bucket under mask in the index array.
func HashRange(l *List, start, end int, mask uint32) {
	for i := start; i < end; i++ {
		e := &l.entries[i]
		e.Hash = hashindex.Hash(e.Path)
		l.index[i] = e.Hash & mask
	}
}

// DiffRange counts the positions in [start,end) where both entries are
// valid and the new path differs from the old one.
func DiffRange(old, next *List, start, end int) int {
	changed := 0
	for i := start; i < end; i++ {
		o, n := &old.entries[i], &next.entries[i]
		if !o.Valid() || !n.Valid() {
			continue
		}
		if !Equal(o, n) {
			changed++
		}
	}
	return changed
}
