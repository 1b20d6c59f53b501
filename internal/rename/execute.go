package rename

import (
	"context"
	"fmt"

	"github.com/substantialcattle5/bulkmv/internal/hashindex"
	"github.com/substantialcattle5/bulkmv/internal/pathlist"
)

// Report summarizes an executed plan.
type Report struct {
	// Changes is the planned number of changing positions.
	Changes int
	// Completed is the number of distinct paths touched.
	Completed int
	// Operations is the number of rename, exchange and overwrite calls.
	Operations  int
	Renamed     int
	Exchanged   int
	Overwritten int
	Discarded   int
	Conflicts   []Conflict
	Failures    []Failure
}

// OK reports whether every planned change completed without problems.
func (r *Report) OK() bool {
	return r.Completed == r.Changes && len(r.Failures) == 0 && len(r.Conflicts) == 0
}

// Execute applies a plan position by position. Pending sources that are
// also targets are swapped into place with Exchange and the two list
// positions trade places, so every later position sees the filesystem as it
// now is. The plan must not be executed twice.
func (e *Engine) Execute(ctx context.Context, plan *Plan) (*Report, error) {
	if plan.index == nil {
		return nil, fmt.Errorf("%w: plan was not built", ErrAborted)
	}
	report := &Report{Changes: plan.Changes}
	old, next, index := plan.Old, plan.New, plan.index
	ledger := NewLedger(plan.Changes)
	defer func() {
		report.Completed = ledger.Len()
		report.Operations = ledger.Operations()
	}()

	for _, d := range plan.Discarded {
		if err := e.ops.Remove(d.Path); err != nil {
			if abort := e.fail(report, Failure{Op: "remove", Old: d.Path, Err: err}); abort != nil {
				return report, abort
			}
			continue
		}
		report.Discarded++
		e.log.Info("removed duplicate", "path", d.Path)
	}

	e.progress.InitTotalProgress(int64(plan.Changes), "Renaming")
	defer e.progress.FinishTotalProgress()

	for i := range old.Len() {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("%w: %w", ErrAborted, err)
		}
		o, t := old.At(i), next.At(i)
		if !o.Valid() || !t.Valid() || pathlist.Equal(o, t) {
			continue
		}
		src, dst := o.String(), t.String()

		exists, err := e.ops.Exists(dst)
		if err != nil {
			if abort := e.fail(report, Failure{Op: "stat", Old: dst, Err: err}); abort != nil {
				return report, abort
			}
			continue
		}

		if !exists {
			if err := e.ops.Rename(src, dst); err != nil {
				if abort := e.fail(report, Failure{Op: "rename", Old: src, New: dst, Err: err}); abort != nil {
					return report, abort
				}
				continue
			}
			index.RemoveHashed(o.Path, o.Hash, old.Index()[i])
			e.progress.UpdateTotalProgress(int64(ledger.Record(o)))
			report.Renamed++
			e.log.Debug("renamed", "from", src, "to", dst)
			continue
		}

		j, pending := index.LookupHashed(t.Path, t.Hash, next.Index()[i])
		if !pending {
			alt := otherKind(nil, t.Path)
			hash := hashindex.Hash(alt)
			_, pending = index.LookupHashed(alt, hash, index.Bucket(hash))
			j = uint32(i)
		}
		// Sources at earlier positions are only still indexed when their
		// own rename failed, so dst is not free.
		if pending && int(j) <= i {
			if abort := e.fail(report, Failure{Op: "rename", Old: src, New: dst, Err: ErrTargetPending}); abort != nil {
				return report, abort
			}
			continue
		}

		if pending {
			if err := e.ops.Exchange(src, dst); err != nil {
				if abort := e.fail(report, Failure{Op: "exchange", Old: src, New: dst, Err: err}); abort != nil {
					return report, abort
				}
				continue
			}
			// dst is final. src now holds the file that was pending at j,
			// which moves to j together with its entry.
			index.RemoveHashed(t.Path, t.Hash, next.Index()[i])
			index.UpsertHashed(o.Path, o.Hash, old.Index()[i], j)
			e.progress.UpdateTotalProgress(int64(ledger.Record(o, t)))
			old.Swap(i, int(j))
			report.Exchanged++
			e.log.Debug("exchanged", "from", src, "to", dst, "pending", int(j))
			continue
		}

		if !e.opts.Implicit {
			c := Conflict{Kind: ConflictOutsideTarget, Position: i, Other: -1, Path: dst}
			report.Conflicts = append(report.Conflicts, c)
			e.log.Warn("skipped", "from", src, "to", dst, "reason", c.Kind.String())
			if e.opts.Fatal {
				return report, fmt.Errorf("%w: %v", ErrAborted, c)
			}
			continue
		}

		if err := e.ops.Rename(src, dst); err != nil {
			if abort := e.fail(report, Failure{Op: "rename", Old: src, New: dst, Err: err}); abort != nil {
				return report, abort
			}
			continue
		}
		index.RemoveHashed(o.Path, o.Hash, old.Index()[i])
		e.progress.UpdateTotalProgress(int64(ledger.Record(o)))
		report.Overwritten++
		e.log.Warn("overwrote a file outside the rename set", "from", src, "to", dst)
	}

	if done := ledger.Len(); done != report.Changes {
		return report, fmt.Errorf("%w: %d planned, %d completed", ErrMismatch, report.Changes, done)
	}
	if len(report.Failures) > 0 || len(report.Conflicts) > 0 {
		return report, fmt.Errorf("%w: %d failed, %d skipped", ErrIncomplete, len(report.Failures), len(report.Conflicts))
	}
	return report, nil
}

// fail records a failed operation and returns the abort error under the
// fatal policy.
func (e *Engine) fail(report *Report, f Failure) error {
	report.Failures = append(report.Failures, f)
	e.log.Error("operation failed", "op", f.Op, "path", f.Old, "target", f.New, "error", f.Err)
	if e.opts.Fatal {
		return fmt.Errorf("%w: %w", ErrAborted, f)
	}
	return nil
}
