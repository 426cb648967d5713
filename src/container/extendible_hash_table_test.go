package container

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// identityHasher makes directory placement a direct function of the key, so
// tests can steer keys into particular buckets.
func identityHasher(key int) uint64 { return uint64(key) }

func TestExtendibleHashTable_InsertFind(t *testing.T) {
	table := NewExtendibleHashTable[int, int](4)

	for i := 0; i < 100; i++ {
		table.Insert(i, i*10)
	}
	for i := 0; i < 100; i++ {
		value, ok := table.Find(i)
		require.Equal(t, true, ok)
		require.Equal(t, i*10, value)
	}
	_, ok := table.Find(100)
	require.Equal(t, false, ok)
}

func TestExtendibleHashTable_Remove(t *testing.T) {
	table := NewExtendibleHashTable[int, string](4)

	table.Insert(1, "one")
	table.Insert(2, "two")

	require.Equal(t, true, table.Remove(1))
	_, ok := table.Find(1)
	require.Equal(t, false, ok)
	require.Equal(t, false, table.Remove(1))

	value, ok := table.Find(2)
	require.Equal(t, true, ok)
	require.Equal(t, "two", value)
}

func TestExtendibleHashTable_UpdateValue(t *testing.T) {
	table := NewExtendibleHashTableWithHasher[int, int](2, identityHasher)

	// Fill the single depth-0 bucket.
	table.Insert(0, 100)
	table.Insert(4, 400)
	require.Equal(t, 1, table.GetNumBuckets())

	// Re-inserting an existing pair is a no-op, even with the bucket full.
	table.Insert(0, 100)
	require.Equal(t, 0, table.GetGlobalDepth())
	require.Equal(t, 1, table.GetNumBuckets())

	// Updating a value replaces in place without splitting.
	table.Insert(4, 444)
	require.Equal(t, 0, table.GetGlobalDepth())
	require.Equal(t, 1, table.GetNumBuckets())
	value, ok := table.Find(4)
	require.Equal(t, true, ok)
	require.Equal(t, 444, value)
}

func TestExtendibleHashTable_SplitOnFullBucket(t *testing.T) {
	table := NewExtendibleHashTableWithHasher[int, int](2, identityHasher)

	// Two keys with low bit 0 fill the only bucket.
	table.Insert(0, 100)
	table.Insert(4, 400)
	require.Equal(t, 0, table.GetGlobalDepth())
	require.Equal(t, 1, table.GetNumBuckets())

	// A key with low bit 1 forces a doubling and a split by bit 0.
	table.Insert(1, 101)
	require.Equal(t, 1, table.GetGlobalDepth())
	require.Equal(t, 2, table.GetNumBuckets())
	require.Equal(t, 1, table.GetLocalDepth(0))
	require.Equal(t, 1, table.GetLocalDepth(1))

	for _, key := range []int{0, 4, 1} {
		value, ok := table.Find(key)
		require.Equal(t, true, ok)
		require.Equal(t, key*100+100, value)
	}
}

func TestExtendibleHashTable_RepeatedSplit(t *testing.T) {
	table := NewExtendibleHashTableWithHasher[int, int](2, identityHasher)

	// 0, 8 and 16 agree on their low three bits, so one insert has to split
	// (and double) several times before bit 3 finally separates 0 from 8.
	table.Insert(0, 100)
	table.Insert(8, 800)
	table.Insert(16, 1600)

	require.Equal(t, 4, table.GetGlobalDepth())
	require.Equal(t, 5, table.GetNumBuckets())
	require.Equal(t, 16, len(table.dir))
	for _, key := range []int{0, 8, 16} {
		value, ok := table.Find(key)
		require.Equal(t, true, ok)
		require.Equal(t, key*100, value)
	}
	require.Equal(t, 4, table.GetLocalDepth(0))
	require.Equal(t, 4, table.GetLocalDepth(8))
	require.Equal(t, 1, table.GetLocalDepth(1))
}

func TestExtendibleHashTable_DirectorySharing(t *testing.T) {
	table := NewExtendibleHashTableWithHasher[int, int](2, identityHasher)
	for _, key := range []int{0, 8, 16, 1, 3, 5} {
		table.Insert(key, key)
	}

	globalDepth := table.GetGlobalDepth()
	require.Equal(t, 1<<globalDepth, len(table.dir))
	for i := range table.dir {
		require.LessOrEqual(t, table.dir[i].depth, globalDepth)
		shared := 0
		for j := range table.dir {
			if table.dir[j] == table.dir[i] {
				shared++
			}
		}
		require.Equal(t, 1<<(globalDepth-table.dir[i].depth), shared)
	}
}

func TestExtendibleHashTable_RandomizedMirror(t *testing.T) {
	table := NewExtendibleHashTable[string, int](4)
	mirror := make(map[string]int)

	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("key-%d", rand.Intn(400))
		value := rand.Intn(1 << 16)
		table.Insert(key, value)
		mirror[key] = value
	}
	for key, value := range mirror {
		got, ok := table.Find(key)
		require.Equal(t, true, ok)
		require.Equal(t, value, got)
	}

	// Remove half and make sure only the removed half disappears.
	removed := make(map[string]bool)
	for key := range mirror {
		if len(removed) >= len(mirror)/2 {
			break
		}
		require.Equal(t, true, table.Remove(key))
		removed[key] = true
	}
	for key, value := range mirror {
		got, ok := table.Find(key)
		if removed[key] {
			require.Equal(t, false, ok)
		} else {
			require.Equal(t, true, ok)
			require.Equal(t, value, got)
		}
	}
}
