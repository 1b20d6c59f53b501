// Package rename applies a position-aligned list of new names to a list of
// existing paths.
//
// Planning normalizes and hashes both lists on the worker pool, indexes the
// old list and verifies the new one against it. Execution then walks the
// positions in order on the calling goroutine: a target that does not exist
// is a plain rename, a target that is still a pending source is swapped in
// with an atomic exchange and the two positions trade places, so rename
// cycles resolve without an intermediate name ever losing a file.
package rename

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/substantialcattle5/bulkmv/internal/config"
	"github.com/substantialcattle5/bulkmv/internal/constants"
	"github.com/substantialcattle5/bulkmv/internal/hashindex"
	"github.com/substantialcattle5/bulkmv/internal/pathlist"
	"github.com/substantialcattle5/bulkmv/internal/sched"
)

// Progress receives one tick per completed rename operation.
type Progress interface {
	InitTotalProgress(total int64, description string)
	UpdateTotalProgress(n int64)
	FinishTotalProgress()
}

type noProgress struct{}

func (noProgress) InitTotalProgress(int64, string) {}
func (noProgress) UpdateTotalProgress(int64) {}
func (noProgress) FinishTotalProgress() {}

// Engine plans and executes rename jobs. It is driven from one goroutine;
// only the pool's tasks run concurrently.
type Engine struct {
	pool     *sched.Pool
	opts     config.Options
	log      *slog.Logger
	ops      FileOps
	progress Progress
}

// New creates an engine. A nil ops uses the real filesystem.
func New(pool *sched.Pool, opts config.Options, logger *slog.Logger, ops FileOps) *Engine {
	if ops == nil {
		ops = OSFileOps{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		pool:     pool,
		opts:     opts,
		log:      logger,
		ops:      ops,
		progress: noProgress{},
	}
}

// SetProgress routes execution progress to p.
func (e *Engine) SetProgress(p Progress) {
	if p == nil {
		p = noProgress{}
	}
	e.progress = p
}

// Prepare normalizes and classifies old, and sorts it when the sort option
// is set. next may be nil; when given it is kept aligned with old.
func (e *Engine) Prepare(old, next *pathlist.List) error {
	if next != nil && next.Len() != old.Len() {
		return fmt.Errorf("%w: %d old, %d new", ErrLengthMismatch, old.Len(), next.Len())
	}
	job := &sched.Job{Old: old, New: next, Stat: e.ops.Classify}
	e.pool.Dispatch(sched.TaskNormalize, old.Len(), job)
	if e.opts.Sort {
		perm := e.pool.SortPositions(old)
		old.Permute(perm)
		if next != nil {
			next.Permute(perm)
		}
	}
	return nil
}

// Run plans the job and, unless this is a dry run, executes it.
func (e *Engine) Run(ctx context.Context, old, next *pathlist.List) (*Plan, *Report, error) {
	plan, err := e.Plan(old, next)
	if err != nil {
		return plan, nil, err
	}
	if e.opts.DryRun {
		return plan, &Report{Changes: plan.Changes}, nil
	}
	report, err := e.Execute(ctx, plan)
	return plan, report, err
}

// Plan normalizes, hashes and cross-checks the two lists and counts the
// positions that change. With blocking conflicts it returns the plan
// together with ErrConflicts.
func (e *Engine) Plan(old, next *pathlist.List) (*Plan, error) {
	if old.Len() != next.Len() {
		return nil, fmt.Errorf("%w: %d old, %d new", ErrLengthMismatch, old.Len(), next.Len())
	}
	n := old.Len()
	plan := &Plan{Old: old, New: next}

	job := &sched.Job{Old: old, New: next, Stat: e.ops.Classify}
	e.pool.Dispatch(sched.TaskNormalize, n, job)

	sources := hashindex.NewMap[uint32](n)
	targets := hashindex.NewMap[uint32](n)
	plan.index = sources
	job.Mask = sources.Mask()
	old.PrepareIndex()
	next.PrepareIndex()
	e.pool.Dispatch(sched.TaskHash, n, job)

	if err := e.indexSources(plan, sources); err != nil {
		return plan, err
	}
	if err := e.verifyTargets(plan, sources, targets); err != nil {
		return plan, err
	}
	targets.Destroy()

	e.pool.Dispatch(sched.TaskDiff, n, job)
	plan.Changes = sched.Sum(job)

	stats := old.ArenaStats()
	e.log.Debug("plan built",
		"entries", n,
		"changes", plan.Changes,
		"collisions", sources.Collisions(),
		"expected_collisions", fmt.Sprintf("%.1f", sources.ExpectedCollisions()),
		"arena", humanize.IBytes(uint64(stats.Committed)))

	if blocking := plan.Blocking(); blocking > 0 {
		return plan, fmt.Errorf("%w: %d found", ErrConflicts, blocking)
	}
	return plan, nil
}

// indexSources maps every valid old path to its position.
func (e *Engine) indexSources(plan *Plan, sources *hashindex.Map[uint32]) error {
	old, next := plan.Old, plan.New
	buckets := old.Index()
	for i := range old.Len() {
		o := old.At(i)
		if !o.Valid() {
			if err := e.conflict(plan, Conflict{Kind: ConflictMissingSource, Position: i, Other: -1, Path: o.String()}); err != nil {
				return err
			}
			continue
		}
		if sources.InsertHashed(o.Path, o.Hash, buckets[i], uint32(i)) {
			continue
		}
		first, _ := sources.LookupHashed(o.Path, o.Hash, buckets[i])
		o.Type = pathlist.TypeError
		next.At(i).Type = pathlist.TypeError
		if err := e.conflict(plan, Conflict{Kind: ConflictDuplicateSource, Position: i, Other: int(first), Path: o.String()}); err != nil {
			return err
		}
	}
	return nil
}

// verifyTargets rejects targets shared by two positions, resolving them
// when autosolve is on and the sources are identical. A target held by a
// source that keeps its name is always shared with that source's position.
func (e *Engine) verifyTargets(plan *Plan, sources, targets *hashindex.Map[uint32]) error {
	next := plan.New
	newBuckets := next.Index()
	var alt []byte
	for i := range next.Len() {
		t := next.At(i)
		if !t.Valid() {
			continue
		}
		if targets.InsertHashed(t.Path, t.Hash, newBuckets[i], uint32(i)) {
			alt = otherKind(alt, t.Path)
			if err := e.verifyKind(plan, sources, targets, i, alt); err != nil {
				return err
			}
			continue
		}
		first, _ := targets.LookupHashed(t.Path, t.Hash, newBuckets[i])
		j := int(first)
		switch e.autosolve(plan, sources, i, j) {
		case i:
		case j:
			targets.UpsertHashed(t.Path, t.Hash, newBuckets[i], uint32(i))
		default:
			if err := e.conflict(plan, Conflict{Kind: ConflictDuplicateTarget, Position: i, Other: j, Path: t.String()}); err != nil {
				return err
			}
		}
	}
	return nil
}

// verifyKind checks the target at i against the entries that share its
// on-disk name but not its kind. alt is the target with its trailing
// separator toggled. A source of the other kind is only in the way when it
// keeps its name or is renamed after position i.
func (e *Engine) verifyKind(plan *Plan, sources, targets *hashindex.Map[uint32], i int, alt []byte) error {
	t := plan.New.At(i)
	hash := hashindex.Hash(alt)
	bucket := targets.Bucket(hash)
	if j, ok := targets.LookupHashed(alt, hash, bucket); ok {
		return e.conflict(plan, Conflict{Kind: ConflictDuplicateTarget, Position: i, Other: int(j), Path: t.String()})
	}
	k, ok := sources.LookupHashed(alt, hash, bucket)
	if !ok || int(k) == i {
		return nil
	}
	if int(k) > i || pathlist.Equal(plan.Old.At(int(k)), plan.New.At(int(k))) {
		return e.conflict(plan, Conflict{Kind: ConflictKindMismatch, Position: i, Other: int(k), Path: t.String()})
	}
	return nil
}

// otherKind writes p with its trailing separator toggled into buf.
func otherKind(buf, p []byte) []byte {
	if n := len(p); n > 0 && p[n-1] == constants.Separator {
		return append(buf[:0], p[:n-1]...)
	}
	buf = append(buf[:0], p...)
	return append(buf, constants.Separator)
}

// autosolve drops one of two positions sharing a target when their sources
// have identical content. It returns the dropped position, or -1.
func (e *Engine) autosolve(plan *Plan, sources *hashindex.Map[uint32], i, j int) int {
	if !e.opts.AutoSolve {
		return -1
	}
	old, next := plan.Old, plan.New
	a, b := old.At(j), old.At(i)
	same, err := e.ops.SameContent(a.String(), b.String())
	if err != nil {
		e.log.Warn("cannot compare duplicate sources", "first", a.String(), "second", b.String(), "error", err)
		return -1
	}
	if !same {
		return -1
	}

	// Keep the source that already carries the target name.
	drop, keep := i, j
	if pathlist.Equal(old.At(i), next.At(i)) {
		drop, keep = j, i
	}
	d := old.At(drop)
	plan.Discarded = append(plan.Discarded, Discard{Position: drop, Keeper: keep, Path: d.String()})
	sources.RemoveHashed(d.Path, d.Hash, old.Index()[drop])
	d.Type = pathlist.TypeError
	next.At(drop).Type = pathlist.TypeError
	e.log.Info("duplicate with identical content will be removed",
		"path", plan.Discarded[len(plan.Discarded)-1].Path,
		"kept", old.At(keep).String())
	return drop
}

// conflict records c and returns ErrConflicts when the fatal policy stops
// the run at the first problem.
func (e *Engine) conflict(plan *Plan, c Conflict) error {
	plan.Conflicts = append(plan.Conflicts, c)
	if e.opts.Fatal {
		return fmt.Errorf("%w: %v", ErrConflicts, c)
	}
	if !c.Blocking() {
		e.log.Warn("entry dropped", "reason", c.Kind.String(), "path", c.Path)
	}
	return nil
}
