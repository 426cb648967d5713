package container

import (
	"hash/maphash"
	"sync"
)

// Hasher maps a key to the hash whose low bits index the directory.
type Hasher[K comparable] func(K) uint64

// ExtendibleHashTable maps keys to values with a doubling directory of
// fixed-capacity buckets. The directory has 2^globalDepth slots; slot i
// holds the bucket for all keys whose hash ends in the bits of i. A bucket
// with local depth d is shared by 2^(globalDepth-d) slots and is split,
// doubling the directory first if necessary, whenever an insert finds it
// full. Operations never fail; absence is reported through ok returns.
type ExtendibleHashTable[K comparable, V comparable] struct {
	globalDepth int
	bucketSize  int
	numBuckets  int
	dir         []*bucket[K, V]
	hash        Hasher[K]
	mu          sync.Mutex
}

// NewExtendibleHashTable creates a table whose buckets hold up to
// bucketSize entries, hashing keys with a per-table random seed.
func NewExtendibleHashTable[K comparable, V comparable](bucketSize int) *ExtendibleHashTable[K, V] {
	seed := maphash.MakeSeed()
	return NewExtendibleHashTableWithHasher[K, V](bucketSize, func(key K) uint64 {
		return maphash.Comparable(seed, key)
	})
}

// NewExtendibleHashTableWithHasher creates a table using the given hash
// function instead of the seeded default.
func NewExtendibleHashTableWithHasher[K comparable, V comparable](bucketSize int, hash Hasher[K]) *ExtendibleHashTable[K, V] {
	return &ExtendibleHashTable[K, V]{
		bucketSize: bucketSize,
		numBuckets: 1,
		dir:        []*bucket[K, V]{newBucket[K, V](bucketSize, 0)},
		hash:       hash,
	}
}

// IndexOf returns the directory slot the key currently hashes to.
func (ht *ExtendibleHashTable[K, V]) IndexOf(key K) int {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.indexOf(key)
}

func (ht *ExtendibleHashTable[K, V]) indexOf(key K) int {
	mask := uint64(1)<<ht.globalDepth - 1
	return int(ht.hash(key) & mask)
}

func (ht *ExtendibleHashTable[K, V]) Find(key K) (V, bool) {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.dir[ht.indexOf(key)].find(key)
}

// Remove deletes the entry for the key and reports whether one existed.
func (ht *ExtendibleHashTable[K, V]) Remove(key K) bool {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.dir[ht.indexOf(key)].remove(key)
}

// Insert stores the key/value pair, replacing any existing value for the
// key. Full buckets are split, doubling the directory whenever the bucket's
// local depth has caught up with the global depth, until the key's bucket
// has room; skewed hashes can make that take several rounds.
func (ht *ExtendibleHashTable[K, V]) Insert(key K, value V) {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	target := ht.dir[ht.indexOf(key)]
	if old, ok := target.find(key); ok {
		if old == value {
			return
		}
		target.remove(key)
	}

	for ht.dir[ht.indexOf(key)].isFull() {
		index := ht.indexOf(key)
		target = ht.dir[index]
		mask := uint64(1) << target.depth
		if target.depth == ht.globalDepth {
			ht.globalDepth++
			ht.dir = append(ht.dir, ht.dir...)
		}

		// Split by the hash bit the old local depth did not yet examine.
		zero := newBucket[K, V](ht.bucketSize, target.depth+1)
		one := newBucket[K, V](ht.bucketSize, target.depth+1)
		ht.numBuckets++
		for elem := target.items.Front(); elem != nil; elem = elem.Next() {
			p := elem.Value.(pair[K, V])
			if ht.hash(p.key)&mask != 0 {
				one.insert(p.key, p.value)
			} else {
				zero.insert(p.key, p.value)
			}
		}
		for i, b := range ht.dir {
			if b != target {
				continue
			}
			if uint64(i)&mask != 0 {
				ht.dir[i] = one
			} else {
				ht.dir[i] = zero
			}
		}
	}

	ht.dir[ht.indexOf(key)].insert(key, value)
}

// GetGlobalDepth returns the number of hash bits indexing the directory.
func (ht *ExtendibleHashTable[K, V]) GetGlobalDepth() int {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.globalDepth
}

// GetLocalDepth returns the local depth of the bucket at the given
// directory slot.
func (ht *ExtendibleHashTable[K, V]) GetLocalDepth(dirIndex int) int {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.dir[dirIndex].depth
}

// GetNumBuckets returns the number of distinct buckets in the directory.
func (ht *ExtendibleHashTable[K, V]) GetNumBuckets() int {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.numBuckets
}
