package container

import "container/list"

type pair[K comparable, V any] struct {
	key   K
	value V
}

// bucket holds up to size key/value pairs in insertion order. Splitting is
// the table's job; a bucket only reports fullness.
type bucket[K comparable, V comparable] struct {
	items *list.List
	size  int
	depth int
}

func newBucket[K comparable, V comparable](size int, depth int) *bucket[K, V] {
	return &bucket[K, V]{
		items: list.New(),
		size:  size,
		depth: depth,
	}
}

func (b *bucket[K, V]) find(key K) (V, bool) {
	for elem := b.items.Front(); elem != nil; elem = elem.Next() {
		if p := elem.Value.(pair[K, V]); p.key == key {
			return p.value, true
		}
	}
	var zero V
	return zero, false
}

// remove deletes the pair with the given key, matching by key alone.
func (b *bucket[K, V]) remove(key K) bool {
	for elem := b.items.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(pair[K, V]).key == key {
			b.items.Remove(elem)
			return true
		}
	}
	return false
}

// insert updates the value in place if the key is present, appends if there
// is room, and returns false if the bucket is full and the key absent.
func (b *bucket[K, V]) insert(key K, value V) bool {
	for elem := b.items.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(pair[K, V]).key == key {
			elem.Value = pair[K, V]{key: key, value: value}
			return true
		}
	}
	if b.isFull() {
		return false
	}
	b.items.PushBack(pair[K, V]{key: key, value: value})
	return true
}

func (b *bucket[K, V]) isFull() bool {
	return b.items.Len() >= b.size
}
