package hashindex

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte(fmt.Sprintf("dir/file-%05d.txt", i))
	}
	return out
}

func TestCapacityFor(t *testing.T) {
	tests := []struct {
		expected int
		want     int
	}{
		{0, MinCapacity},
		{1, MinCapacity},
		{8, 16},
		{9, 32},
		{1000, 2048},
		{1024, 2048},
		{1025, 4096},
		{MaxCapacity, MaxCapacity},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.expected), func(t *testing.T) {
			assert.Equal(t, tt.want, capacityFor(tt.expected))
		})
	}
}

func TestMapRoundTrip(t *testing.T) {
	ks := keys(500)
	m := NewMap[uint32](len(ks))

	for i, k := range ks {
		require.True(t, m.Insert(k, uint32(i)))
	}
	assert.Equal(t, len(ks), m.Len())
	assert.LessOrEqual(t, 2*len(ks), m.Cap())

	for i, k := range ks {
		v, ok := m.Lookup(k)
		require.True(t, ok, "key %s", k)
		assert.Equal(t, uint32(i), v)
	}

	_, ok := m.Lookup([]byte("missing"))
	assert.False(t, ok)
}

func TestMapInsertDuplicate(t *testing.T) {
	m := NewMap[uint32](4)
	require.True(t, m.Insert([]byte("a"), 1))
	assert.False(t, m.Insert([]byte("a"), 2))

	v, _ := m.Lookup([]byte("a"))
	assert.Equal(t, uint32(1), v, "failed insert must not overwrite")
	assert.Equal(t, 1, m.Len())

	assert.False(t, m.Upsert([]byte("a"), 3))
	v, _ = m.Lookup([]byte("a"))
	assert.Equal(t, uint32(3), v)
}

func TestMapRemoveThenLookup(t *testing.T) {
	ks := keys(300)
	m := NewMap[uint32](len(ks))
	for i, k := range ks {
		m.Insert(k, uint32(i))
	}

	removed := 0
	for i, k := range ks {
		if i%3 == 0 {
			require.True(t, m.Remove(k))
			removed++
		}
	}
	assert.False(t, m.Remove(ks[0]), "second removal")
	assert.Equal(t, len(ks)-removed, m.Len())

	for i, k := range ks {
		v, ok := m.Lookup(k)
		if i%3 == 0 {
			assert.False(t, ok, "removed key %s still present", k)
			continue
		}
		require.True(t, ok, "live key %s lost", k)
		assert.Equal(t, uint32(i), v)
	}
}

// Forcing every key into one bucket exercises head splicing and mid-chain
// unlinking.
func TestMapChainRemoval(t *testing.T) {
	m := NewMap[int](16)
	ks := keys(6)
	const bucket = 5
	for i, k := range ks {
		require.True(t, m.InsertHashed(k, uint32(100+i), bucket, i))
	}
	assert.Equal(t, 6, m.Len())
	assert.Equal(t, 5, m.Collisions())

	require.True(t, m.RemoveHashed(ks[0], 100, bucket), "head")
	require.True(t, m.RemoveHashed(ks[3], 103, bucket), "middle")
	require.True(t, m.RemoveHashed(ks[5], 105, bucket), "tail")
	assert.False(t, m.RemoveHashed(ks[5], 105, bucket))

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 2, m.Collisions())
	for _, i := range []int{1, 2, 4} {
		v, ok := m.LookupHashed(ks[i], uint32(100+i), bucket)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}

	for _, i := range []int{1, 2, 4} {
		require.True(t, m.RemoveHashed(ks[i], uint32(100+i), bucket))
	}
	assert.Zero(t, m.Len())
	assert.Zero(t, m.Collisions())
	assert.True(t, m.InsertHashed(ks[0], 100, bucket, 0), "emptied bucket accepts new head")
}

func TestMapSameHashDifferentKeys(t *testing.T) {
	m := NewMap[int](8)
	require.True(t, m.InsertHashed([]byte("x"), 7, 7, 1))
	require.True(t, m.InsertHashed([]byte("y"), 7, 7, 2), "hash equality alone is not key equality")
	v, ok := m.LookupHashed([]byte("y"), 7, 7)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestMapRebuildPreservesContent(t *testing.T) {
	ks := keys(1000)
	m := NewMap[uint32](len(ks))
	for i, k := range ks {
		m.Insert(k, uint32(i))
	}
	before := m.Cap()

	m.Rebuild()
	assert.Equal(t, 2*before, m.Cap())
	assert.Equal(t, uint32(2*before-1), m.Mask())
	assert.Equal(t, len(ks), m.Len())
	for i, k := range ks {
		v, ok := m.Lookup(k)
		require.True(t, ok)
		assert.Equal(t, uint32(i), v)
	}
}

func TestMapLengthMatchesNetLiveKeys(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	ks := keys(200)
	m := NewMap[int](len(ks))
	live := make(map[string]bool)

	for range 5000 {
		k := ks[rng.IntN(len(ks))]
		if rng.IntN(2) == 0 {
			added := m.Insert(k, 0)
			assert.Equal(t, !live[string(k)], added)
			live[string(k)] = true
		} else {
			removed := m.Remove(k)
			assert.Equal(t, live[string(k)], removed)
			delete(live, string(k))
		}
		if rng.IntN(500) == 0 {
			m.Rebuild()
		}
	}
	assert.Equal(t, len(live), m.Len())

	seen := 0
	for k := range m.All() {
		assert.True(t, live[string(k)])
		seen++
	}
	assert.Equal(t, len(live), seen)
}

func TestExpectedCollisions(t *testing.T) {
	m := NewMap[int](0)
	assert.InDelta(t, 0, m.ExpectedCollisions(), 1e-9)

	for _, k := range keys(8) {
		m.Insert(k, 0)
	}
	// 8 keys over 16 slots: 8 - 16 + 16*(15/16)^8
	assert.InDelta(t, 1.5475, m.ExpectedCollisions(), 1e-3)
}

func TestResetKeepsCapacity(t *testing.T) {
	m := NewMap[int](100)
	for i, k := range keys(100) {
		m.Insert(k, i)
	}
	capacity := m.Cap()
	m.Reset()
	assert.Zero(t, m.Len())
	assert.Zero(t, m.Collisions())
	assert.Equal(t, capacity, m.Cap())
	_, ok := m.Lookup(keys(1)[0])
	assert.False(t, ok)
}

func TestSet(t *testing.T) {
	s := NewSet(10)
	assert.True(t, s.Insert([]byte("a/")))
	assert.False(t, s.Insert([]byte("a/")))
	assert.True(t, s.Contains([]byte("a/")))
	assert.False(t, s.Contains([]byte("a")))

	h := Hash([]byte("b"))
	assert.True(t, s.InsertHashed([]byte("b"), h, s.Bucket(h)))
	assert.True(t, s.ContainsHashed([]byte("b"), h, s.Bucket(h)))
	assert.Equal(t, 2, s.Len())

	s.Rebuild()
	assert.True(t, s.Contains([]byte("b")))
	assert.True(t, s.Remove([]byte("a/")))
	assert.Equal(t, 1, s.Len())

	var got []string
	for k := range s.Keys() {
		got = append(got, string(k))
	}
	assert.Equal(t, []string{"b"}, got)
}

func TestHashIsStable(t *testing.T) {
	assert.Equal(t, Hash([]byte("some/path")), Hash([]byte("some/path")))
	assert.NotEqual(t, Hash([]byte("some/path")), Hash([]byte("some/path/")))
}
