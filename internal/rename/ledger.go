package rename

import (
	"github.com/substantialcattle5/bulkmv/internal/hashindex"
	"github.com/substantialcattle5/bulkmv/internal/pathlist"
)

// Ledger records the distinct paths touched by the execute phase.
type Ledger struct {
	touched *hashindex.Set
	ops     int
}

// NewLedger sizes the ledger for the planned number of changes.
func NewLedger(expected int) *Ledger {
	return &Ledger{touched: hashindex.NewSet(expected)}
}

// Record counts one filesystem operation that touched entries and returns
// how many of their paths were not touched before. Entries must be hashed.
func (l *Ledger) Record(entries ...*pathlist.Entry) int {
	l.ops++
	added := 0
	for _, e := range entries {
		if l.touched.InsertHashed(e.Path, e.Hash, l.touched.Bucket(e.Hash)) {
			added++
		}
	}
	return added
}

// Len returns the number of distinct touched paths.
func (l *Ledger) Len() int { return l.touched.Len() }

// Operations returns the number of filesystem calls made.
func (l *Ledger) Operations() int { return l.ops }
