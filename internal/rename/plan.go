package rename

import (
	"iter"

	"github.com/substantialcattle5/bulkmv/internal/hashindex"
	"github.com/substantialcattle5/bulkmv/internal/pathlist"
)

// Plan is the verified state of a job between planning and execution.
type Plan struct {
	Old *pathlist.List
	New *pathlist.List
	// Changes is the number of valid positions whose path changes.
	Changes   int
	Conflicts []Conflict
	// Discarded lists sources removed by autosolve when the plan executes.
	Discarded []Discard

	// index maps every pending old path to its current position.
	index *hashindex.Map[uint32]
}

// Discard is a redundant source with the same content as Keeper's.
type Discard struct {
	Position int
	Keeper   int
	Path     string
}

// Blocking returns the number of conflicts that prevent execution.
func (p *Plan) Blocking() int {
	n := 0
	for _, c := range p.Conflicts {
		if c.Blocking() {
			n++
		}
	}
	return n
}

// Changed iterates over the old and new path of every changing position.
func (p *Plan) Changed() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for i := range p.Old.Len() {
			o, n := p.Old.At(i), p.New.At(i)
			if !o.Valid() || !n.Valid() || pathlist.Equal(o, n) {
				continue
			}
			if !yield(o.String(), n.String()) {
				return
			}
		}
	}
}
