package arena

import "math"

// poolBlock is the number of nodes allocated per pool block.
const poolBlock = 1024

// Ref addresses a node inside a Pool. The zero Ref means "no node", so
// zero-valued link fields read as end of chain.
type Ref uint32

// Pool is a typed arena. Nodes are addressed by Ref rather than by pointer
// so that structures linking them survive pool growth, and the whole pool is
// discarded as one unit.
type Pool[T any] struct {
	blocks [][]T
	n      int
}

// NewPool returns a pool with room for about hint nodes before it grows.
func NewPool[T any](hint int) *Pool[T] {
	p := &Pool[T]{}
	if hint > 0 {
		p.blocks = make([][]T, 0, (hint+poolBlock-1)/poolBlock)
	}
	return p
}

// Alloc returns a zeroed node and its reference. Pointers returned by Alloc
// and At stay valid until Reset.
func (p *Pool[T]) Alloc() (Ref, *T) {
	if p.n >= math.MaxUint32-1 {
		fatal("arena: node pool exhausted at %d nodes", p.n)
	}
	if p.n == len(p.blocks)*poolBlock {
		p.blocks = append(p.blocks, make([]T, poolBlock))
	}
	i := p.n
	p.n++
	node := &p.blocks[i/poolBlock][i%poolBlock]
	var zero T
	*node = zero
	return Ref(i + 1), node
}

// At resolves a reference. It panics on the zero Ref.
func (p *Pool[T]) At(r Ref) *T {
	i := int(r) - 1
	return &p.blocks[i/poolBlock][i%poolBlock]
}

// Len reports the number of nodes handed out since the last Reset.
func (p *Pool[T]) Len() int { return p.n }

// Reset forgets every node but keeps the blocks for reuse.
func (p *Pool[T]) Reset() { p.n = 0 }
