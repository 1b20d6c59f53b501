package hashindex

import "iter"

// Set is a Map without payload.
type Set struct {
	m *Map[struct{}]
}

// NewSet returns a set sized for expected keys.
func NewSet(expected int) *Set {
	return &Set{m: NewMap[struct{}](expected)}
}

// Insert adds key and reports whether it was absent.
func (s *Set) Insert(key []byte) bool { return s.m.Insert(key, struct{}{}) }

// InsertHashed is Insert with a precomputed hash and bucket.
func (s *Set) InsertHashed(key []byte, hash, bucket uint32) bool {
	return s.m.InsertHashed(key, hash, bucket, struct{}{})
}

// Contains reports whether key is present.
func (s *Set) Contains(key []byte) bool {
	_, ok := s.m.Lookup(key)
	return ok
}

// ContainsHashed is Contains with a precomputed hash and bucket.
func (s *Set) ContainsHashed(key []byte, hash, bucket uint32) bool {
	_, ok := s.m.LookupHashed(key, hash, bucket)
	return ok
}

// Remove deletes key and reports whether it was present.
func (s *Set) Remove(key []byte) bool { return s.m.Remove(key) }

// RemoveHashed is Remove with a precomputed hash and bucket.
func (s *Set) RemoveHashed(key []byte, hash, bucket uint32) bool {
	return s.m.RemoveHashed(key, hash, bucket)
}

// Keys iterates over the members in bucket order.
func (s *Set) Keys() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for k := range s.m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Len returns the number of keys.
func (s *Set) Len() int { return s.m.Len() }

// Cap returns the bucket count.
func (s *Set) Cap() int { return s.m.Cap() }

// Mask returns the bucket mask, Cap()-1.
func (s *Set) Mask() uint32 { return s.m.Mask() }

// Bucket maps a hash to its bucket.
func (s *Set) Bucket(hash uint32) uint32 { return s.m.Bucket(hash) }

// Collisions returns the number of keys stored past their bucket head.
func (s *Set) Collisions() int { return s.m.Collisions() }

// ExpectedCollisions returns the collision count a uniform hash would give
// at the current load.
func (s *Set) ExpectedCollisions() float64 { return s.m.ExpectedCollisions() }

// Rebuild relinks every key after a bulk change.
func (s *Set) Rebuild() { s.m.Rebuild() }

// Reset empties the set and keeps its buckets.
func (s *Set) Reset() { s.m.Reset() }

// Destroy releases the buckets. The set must not be used afterwards.
func (s *Set) Destroy() { s.m.Destroy() }
