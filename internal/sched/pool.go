// Package sched runs range-partitioned passes over path lists on a fixed pool
// of long-lived workers fed through a bounded ring queue.
//
// A Pool is created once by the process entry point and passed to whatever
// needs to dispatch work. Dispatch blocks until every partition it enqueued
// has completed, so results are never observed half-written.
package sched

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sys/cpu"

	"github.com/substantialcattle5/bulkmv/internal/pathlist"
	"github.com/substantialcattle5/bulkmv/internal/psort"
)

// MaxWorkers caps the pool size regardless of the detected parallelism.
const MaxWorkers = 64

// Range is a half-open partition of a dispatch.
type Range = psort.Range

// TaskKind selects the body a worker runs for an item.
type TaskKind uint8

const (
	TaskNormalize TaskKind = iota
	TaskHash
	TaskSort
	TaskDiff
)

func (k TaskKind) String() string {
	switch k {
	case TaskNormalize:
		return "normalize"
	case TaskHash:
		return "hash"
	case TaskSort:
		return "sort"
	case TaskDiff:
		return "diff"
	default:
		return fmt.Sprintf("task(%d)", uint8(k))
	}
}

// Counter is a per-partition accumulator padded to its own cache line.
type Counter struct {
	N int
	_ cpu.CacheLinePad
}

// Job carries the inputs shared by every partition of one dispatch. Tasks
// only touch list entries inside their own range.
type Job struct {
	Old  *pathlist.List
	New  *pathlist.List
	Mask uint32
	// Perm is the permutation sorted by TaskSort.
	Perm []uint32
	Stat pathlist.StatFunc
	// Counters receives one result per partition for TaskDiff.
	Counters []Counter
}

// WorkItem is one partition of a dispatch. It is not modified after it is
// queued.
type WorkItem struct {
	Kind  TaskKind
	Start int
	End   int
	Slot  int
	Job   *Job
}

// Pool is a fixed set of workers consuming WorkItems.
type Pool struct {
	workers int

	mu          sync.Mutex
	workReady   sync.Cond
	allDone     sync.Cond
	ring        []WorkItem
	head        int
	queued      int
	outstanding int
	stop        bool
	failure     any

	// dispatchMu serializes dispatches so barriers never interleave.
	dispatchMu sync.Mutex
	wg         sync.WaitGroup
}

// New starts a pool. workers <= 0 selects runtime.NumCPU(); the result is
// capped at MaxWorkers. A single-worker pool starts no goroutines.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, MaxWorkers)

	p := &Pool{
		workers: workers,
		ring:    make([]WorkItem, 2*workers),
	}
	p.workReady.L = &p.mu
	p.allDone.L = &p.mu
	if workers == 1 {
		return p
	}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

// Workers returns the number of partitions a dispatch is split into.
func (p *Pool) Workers() int { return p.workers }

// Dispatch runs kind over [0,length) and returns the partitions used. It
// returns only after every partition has completed. A panic raised by a task
// is re-raised here once the barrier is reached.
func (p *Pool) Dispatch(kind TaskKind, length int, job *Job) []Range {
	p.dispatchMu.Lock()
	defer p.dispatchMu.Unlock()

	ranges := psort.Partition(length, p.workers)
	if len(ranges) == 0 {
		return nil
	}
	if kind == TaskDiff {
		job.Counters = make([]Counter, len(ranges))
	}

	p.mu.Lock()
	stopped := p.stop
	p.mu.Unlock()
	if p.workers == 1 || stopped {
		// Inline execution still honours the partitioning so merge runs
		// line up with what the caller expects.
		for i, r := range ranges {
			execute(WorkItem{Kind: kind, Start: r.Start, End: r.End, Slot: i, Job: job})
		}
		return ranges
	}

	p.mu.Lock()
	for i, r := range ranges {
		for p.queued == len(p.ring) {
			p.allDone.Wait()
		}
		p.ring[(p.head+p.queued)%len(p.ring)] = WorkItem{Kind: kind, Start: r.Start, End: r.End, Slot: i, Job: job}
		p.queued++
		p.outstanding++
		p.workReady.Signal()
	}
	for p.outstanding > 0 || p.queued > 0 {
		p.allDone.Wait()
	}
	failure := p.failure
	p.failure = nil
	p.mu.Unlock()

	if failure != nil {
		panic(failure)
	}
	return ranges
}

// Sum totals the per-partition counters of a finished TaskDiff dispatch.
func Sum(job *Job) int {
	total := 0
	for i := range job.Counters {
		total += job.Counters[i].N
	}
	return total
}

// Close stops and joins every worker. Later dispatches run inline. Close is
// idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.stop {
		p.mu.Unlock()
		return
	}
	p.stop = true
	p.workReady.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.queued == 0 && !p.stop {
			p.workReady.Wait()
		}
		if p.queued == 0 {
			p.mu.Unlock()
			return
		}
		item := p.ring[p.head]
		p.ring[p.head] = WorkItem{}
		p.head = (p.head + 1) % len(p.ring)
		p.queued--
		// A slot was freed for a dispatcher waiting on a full ring.
		p.allDone.Broadcast()
		p.mu.Unlock()

		failure := p.safeExecute(item)

		p.mu.Lock()
		if failure != nil && p.failure == nil {
			p.failure = failure
		}
		p.outstanding--
		if p.outstanding == 0 && p.queued == 0 {
			p.allDone.Broadcast()
		}
		p.mu.Unlock()
	}
}

func (p *Pool) safeExecute(item WorkItem) (failure any) {
	defer func() {
		if r := recover(); r != nil {
			failure = fmt.Errorf("sched: %s task [%d,%d) panicked: %v", item.Kind, item.Start, item.End, r)
		}
	}()
	execute(item)
	return nil
}

func execute(item WorkItem) {
	job := item.Job
	switch item.Kind {
	case TaskNormalize:
		pathlist.NormalizeRange(job.Old, job.New, item.Start, item.End, job.Stat)
	case TaskHash:
		pathlist.HashRange(job.Old, item.Start, item.End, job.Mask)
		if job.New != nil {
			pathlist.HashRange(job.New, item.Start, item.End, job.Mask)
		}
	case TaskSort:
		psort.SortRun(job.Perm[item.Start:item.End], ByOld(job.Old))
	case TaskDiff:
		job.Counters[item.Slot].N = pathlist.DiffRange(job.Old, job.New, item.Start, item.End)
	default:
		panic(fmt.Sprintf("unknown task kind %d", item.Kind))
	}
}

// ByOld orders positions by the byte order of the list's paths.
func ByOld(l *pathlist.List) func(a, b uint32) int {
	return func(a, b uint32) int {
		return pathlist.Compare(l.At(int(a)), l.At(int(b)))
	}
}

// SortPositions returns the positions of l in path order: partitions are
// sorted on the pool and merged on the calling goroutine.
func (p *Pool) SortPositions(l *pathlist.List) []uint32 {
	perm := make([]uint32, l.Len())
	for i := range perm {
		perm[i] = uint32(i)
	}
	job := &Job{Old: l, Perm: perm}
	runs := p.Dispatch(TaskSort, len(perm), job)
	psort.Merge(perm, runs, ByOld(l))
	return perm
}
