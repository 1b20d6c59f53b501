// Package hashindex implements the content-addressed index used to look up
// path entries: a power-of-two slot table whose collision chains live in an
// arena node pool and are linked by arena references rather than pointers.
//
// Keys are borrowed byte slices. The index never copies them, so callers must
// keep the backing storage alive for as long as the key is present.
package hashindex

import (
	"bytes"
	"iter"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/substantialcattle5/bulkmv/internal/arena"
)

const (
	// MinCapacity is the smallest slot table ever allocated.
	MinCapacity = 16
	// MaxCapacity is the largest slot table; bucket indices must fit in uint32.
	MaxCapacity = 1 << 31
)

// Hash returns the 32-bit content hash of key.
func Hash(key []byte) uint32 {
	h := xxhash.Sum64(key)
	return uint32(h ^ h>>32)
}

type node[V any] struct {
	key   []byte
	hash  uint32
	used  bool
	value V
	next  arena.Ref
}

// Map is a hash map from byte keys to V. It is not safe for concurrent use.
type Map[V any] struct {
	slots      []node[V]
	pool       *arena.Pool[node[V]]
	mask       uint32
	length     int
	collisions int
}

// NewMap returns a map sized so that expected keys keep the load factor at
// or below one half.
func NewMap[V any](expected int) *Map[V] {
	return newMapCap[V](capacityFor(expected))
}

func newMapCap[V any](capacity int) *Map[V] {
	return &Map[V]{
		slots: make([]node[V], capacity),
		pool:  arena.NewPool[node[V]](capacity / 4),
		mask:  uint32(capacity - 1),
	}
}

// capacityFor returns the smallest power of two >= 2*expected, clamped to
// [MinCapacity, MaxCapacity].
func capacityFor(expected int) int {
	want := MaxCapacity
	if expected < MaxCapacity/2 {
		want = expected * 2
	}
	c := MinCapacity
	for c < want && c < MaxCapacity {
		c <<= 1
	}
	return c
}

// Len returns the number of live keys.
func (m *Map[V]) Len() int { return m.length }

// Cap returns the number of slots.
func (m *Map[V]) Cap() int { return len(m.slots) }

// Mask returns Cap()-1; hash&Mask() is the bucket of a key.
func (m *Map[V]) Mask() uint32 { return m.mask }

// Collisions returns the number of live keys stored past the head of their
// bucket's chain.
func (m *Map[V]) Collisions() int { return m.collisions }

// Bucket reduces a hash to a slot index for the current capacity.
func (m *Map[V]) Bucket(hash uint32) uint32 { return hash & m.mask }

// Insert adds key with value. It returns false, leaving the map unchanged,
// if key is already present.
func (m *Map[V]) Insert(key []byte, value V) bool {
	h := Hash(key)
	return m.InsertHashed(key, h, h&m.mask, value)
}

// InsertHashed is Insert with a precomputed hash and bucket. bucket must be
// hash&Mask() for the map's current capacity.
func (m *Map[V]) InsertHashed(key []byte, hash, bucket uint32, value V) bool {
	head := &m.slots[bucket]
	if !head.used {
		*head = node[V]{key: key, hash: hash, used: true, value: value}
		m.length++
		return true
	}
	tail := head
	for {
		if tail.hash == hash && bytes.Equal(tail.key, key) {
			return false
		}
		if tail.next == 0 {
			break
		}
		tail = m.pool.At(tail.next)
	}
	ref, n := m.pool.Alloc()
	*n = node[V]{key: key, hash: hash, used: true, value: value}
	tail.next = ref
	m.length++
	m.collisions++
	return true
}

// Upsert stores value under key, replacing any previous value. It reports
// whether the key was newly added.
func (m *Map[V]) Upsert(key []byte, value V) bool {
	h := Hash(key)
	return m.UpsertHashed(key, h, h&m.mask, value)
}

// UpsertHashed is Upsert with a precomputed hash and bucket.
func (m *Map[V]) UpsertHashed(key []byte, hash, bucket uint32, value V) bool {
	if n := m.find(key, hash, bucket); n != nil {
		n.value = value
		return false
	}
	return m.InsertHashed(key, hash, bucket, value)
}

// Lookup returns the value stored under key.
func (m *Map[V]) Lookup(key []byte) (V, bool) {
	h := Hash(key)
	return m.LookupHashed(key, h, h&m.mask)
}

// LookupHashed is Lookup with a precomputed hash and bucket.
func (m *Map[V]) LookupHashed(key []byte, hash, bucket uint32) (V, bool) {
	if n := m.find(key, hash, bucket); n != nil {
		return n.value, true
	}
	var zero V
	return zero, false
}

func (m *Map[V]) find(key []byte, hash, bucket uint32) *node[V] {
	n := &m.slots[bucket]
	if !n.used {
		return nil
	}
	for {
		if n.hash == hash && bytes.Equal(n.key, key) {
			return n
		}
		if n.next == 0 {
			return nil
		}
		n = m.pool.At(n.next)
	}
}

// Remove deletes key and reports whether it was present.
func (m *Map[V]) Remove(key []byte) bool {
	h := Hash(key)
	return m.RemoveHashed(key, h, h&m.mask)
}

// RemoveHashed is Remove with a precomputed hash and bucket.
//
// Removing a chain head copies the next chained node into the slot, so every
// live key stays reachable from its bucket without tombstones. The vacated
// pool node is not reused until the next Rebuild or Reset.
func (m *Map[V]) RemoveHashed(key []byte, hash, bucket uint32) bool {
	head := &m.slots[bucket]
	if !head.used {
		return false
	}
	if head.hash == hash && bytes.Equal(head.key, key) {
		if head.next != 0 {
			succ := m.pool.At(head.next)
			*head = *succ
			*succ = node[V]{}
			m.collisions--
		} else {
			*head = node[V]{}
		}
		m.length--
		return true
	}
	prev := head
	for prev.next != 0 {
		cur := m.pool.At(prev.next)
		if cur.hash == hash && bytes.Equal(cur.key, key) {
			prev.next = cur.next
			*cur = node[V]{}
			m.length--
			m.collisions--
			return true
		}
		prev = cur
	}
	return false
}

// All iterates over every live key and value in bucket order.
func (m *Map[V]) All() iter.Seq2[[]byte, V] {
	return func(yield func([]byte, V) bool) {
		for i := range m.slots {
			n := &m.slots[i]
			if !n.used {
				continue
			}
			for {
				if !yield(n.key, n.value) {
					return
				}
				if n.next == 0 {
					break
				}
				n = m.pool.At(n.next)
			}
		}
	}
}

// Rebuild doubles the capacity, saturating at MaxCapacity, and rehashes
// every key into a fresh slot table and node pool. The old storage is
// dropped as a unit. It must not run concurrently with any other method.
func (m *Map[V]) Rebuild() {
	capacity := len(m.slots) * 2
	if capacity > MaxCapacity {
		capacity = MaxCapacity
	}
	next := newMapCap[V](capacity)
	for i := range m.slots {
		n := &m.slots[i]
		if !n.used {
			continue
		}
		for {
			next.InsertHashed(n.key, n.hash, n.hash&next.mask, n.value)
			if n.next == 0 {
				break
			}
			n = m.pool.At(n.next)
		}
	}
	*m = *next
}

// ExpectedCollisions returns the number of chained keys a uniform hash would
// produce for the current load: n - m + m(1-1/m)^n.
func (m *Map[V]) ExpectedCollisions() float64 {
	n := float64(m.length)
	slots := float64(len(m.slots))
	return n - slots + slots*math.Pow(1-1/slots, n)
}

// Reset removes every key while keeping the slot table and pool.
func (m *Map[V]) Reset() {
	clear(m.slots)
	m.pool.Reset()
	m.length = 0
	m.collisions = 0
}

// Destroy drops all storage. The map must not be used afterwards.
func (m *Map[V]) Destroy() {
	m.slots = nil
	m.pool = nil
	m.length = 0
	m.collisions = 0
}
