package rename

import (
	"errors"
	"fmt"
)

var (
	// ErrConflicts means the plan holds naming conflicts and nothing was renamed.
	ErrConflicts = errors.New("unresolved naming conflicts")
	// ErrMismatch means the number of touched paths differs from the number
	// of planned changes. The filesystem needs manual inspection.
	ErrMismatch = errors.New("completed renames do not match planned changes")
	// ErrLengthMismatch means the old and new lists are not aligned.
	ErrLengthMismatch = errors.New("old and new lists differ in length")
	// ErrIncomplete means some operations failed or were skipped although
	// the touched-path count matches.
	ErrIncomplete = errors.New("some renames did not complete")
	// ErrAborted means the fatal policy or an interrupt stopped execution.
	ErrAborted = errors.New("rename aborted")
	// ErrTargetPending means the target still holds the source of an
	// earlier position that could not be renamed.
	ErrTargetPending = errors.New("target still holds an entry that was not renamed")
)

// ConflictKind classifies a naming problem.
type ConflictKind uint8

const (
	// ConflictDuplicateSource is a path listed twice in the old list. The
	// later position is dropped.
	ConflictDuplicateSource ConflictKind = iota + 1
	// ConflictMissingSource is an old path that vanished before the run.
	ConflictMissingSource
	// ConflictDuplicateTarget is a new path shared by two positions.
	ConflictDuplicateTarget
	// ConflictOutsideTarget is a target that exists on disk but is not part
	// of the rename set.
	ConflictOutsideTarget
	// ConflictKindMismatch is a target that differs from another source
	// only by the trailing separator, i.e. a file name used for a
	// directory or the reverse.
	ConflictKindMismatch
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictDuplicateSource:
		return "duplicate source"
	case ConflictMissingSource:
		return "missing source"
	case ConflictDuplicateTarget:
		return "duplicate target"
	case ConflictOutsideTarget:
		return "target exists outside the rename set"
	case ConflictKindMismatch:
		return "target names an entry of another kind"
	default:
		return fmt.Sprintf("conflict(%d)", uint8(k))
	}
}

// Conflict is one naming problem. Positions are 0-based; Other is -1 when
// no second position is involved.
type Conflict struct {
	Kind     ConflictKind
	Position int
	Other    int
	Path     string
}

// Blocking reports whether the conflict prevents the run. Dropped entries
// are only warnings unless the fatal policy is set.
func (c Conflict) Blocking() bool {
	return c.Kind != ConflictDuplicateSource && c.Kind != ConflictMissingSource
}

func (c Conflict) Error() string {
	if c.Other >= 0 {
		return fmt.Sprintf("%s: %q (lines %d and %d)", c.Kind, c.Path, c.Other+1, c.Position+1)
	}
	return fmt.Sprintf("%s: %q (line %d)", c.Kind, c.Path, c.Position+1)
}

// Failure is a filesystem operation that did not succeed.
type Failure struct {
	Op  string
	Old string
	New string
	Err error
}

func (f Failure) Error() string {
	if f.New == "" {
		return fmt.Sprintf("%s %s: %v", f.Op, f.Old, f.Err)
	}
	return fmt.Sprintf("%s %s -> %s: %v", f.Op, f.Old, f.New, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }
