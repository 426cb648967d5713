package disk

import (
	"container/list"
	"fmt"
	"math"
	"sync"

	"mini-db-golang/src/common"
)

// frameEntry tracks one frame. A frame lives on the history list until its
// access count reaches k, then moves to the buffer list for good.
type frameEntry struct {
	elem        *list.Element
	accessCount int
	evictable   bool
}

// LRUKReplacer evicts the frame whose k-th most recent access is furthest
// in the past. Frames with fewer than k recorded accesses have infinite
// backward distance and are always evicted before any frame with k or more,
// oldest first. Among frames with k or more accesses, every new access
// refreshes the frame's recency position.
type LRUKReplacer struct {
	numFrames   int // valid frame ids are [0, numFrames)
	capacity    int // max frames tracked at once
	k           int
	historyList list.List // access count < k; front is most recent
	bufferList  list.List // access count >= k; front is most recent
	index       map[common.FrameId]*frameEntry
	currSize    int
	mu          sync.Mutex
}

func NewLRUKReplacer(numFrames int, k int) *LRUKReplacer {
	return &LRUKReplacer{
		numFrames: numFrames,
		capacity:  numFrames,
		k:         k,
		index:     make(map[common.FrameId]*frameEntry),
	}
}

// RecordAccess notes one access to the given frame. An unseen frame is
// admitted to the history list as non-evictable; if the replacer is already
// tracking capacity frames, an evictable one is evicted to make room, and
// the access is dropped if there is none.
func (lruk *LRUKReplacer) RecordAccess(frameId common.FrameId) error {
	if frameId < 0 || int(frameId) >= lruk.numFrames {
		return fmt.Errorf("record access for frame %d: %w", frameId, ErrInvalidFrameId)
	}
	lruk.mu.Lock()
	defer lruk.mu.Unlock()

	entry, ok := lruk.index[frameId]
	if !ok {
		if len(lruk.index) >= lruk.capacity {
			if _, evicted := lruk.evictOne(); !evicted {
				return nil
			}
		}
		entry = &frameEntry{elem: lruk.historyList.PushFront(frameId)}
		lruk.index[frameId] = entry
	}

	if entry.accessCount < math.MaxInt {
		entry.accessCount++
	}
	if entry.accessCount == lruk.k {
		lruk.historyList.Remove(entry.elem)
		entry.elem = lruk.bufferList.PushFront(frameId)
	} else if entry.accessCount > lruk.k {
		lruk.bufferList.MoveToFront(entry.elem)
	}
	return nil
}

// SetEvictable marks whether the frame may be chosen as a victim. Unseen
// frames are ignored; repeated calls with the same flag change nothing.
func (lruk *LRUKReplacer) SetEvictable(frameId common.FrameId, evictable bool) error {
	if frameId < 0 || int(frameId) >= lruk.numFrames {
		return fmt.Errorf("set evictable for frame %d: %w", frameId, ErrInvalidFrameId)
	}
	lruk.mu.Lock()
	defer lruk.mu.Unlock()

	entry, ok := lruk.index[frameId]
	if !ok {
		return nil
	}
	if entry.evictable && !evictable {
		entry.evictable = false
		lruk.currSize--
	} else if !entry.evictable && evictable {
		entry.evictable = true
		lruk.currSize++
	}
	return nil
}

// Evict removes and returns the frame with the largest backward k-distance.
// Returns false if no frame is evictable.
func (lruk *LRUKReplacer) Evict() (common.FrameId, bool) {
	lruk.mu.Lock()
	defer lruk.mu.Unlock()

	if lruk.currSize == 0 {
		return 0, false
	}
	return lruk.evictOne()
}

// Remove drops the frame from tracking regardless of its position. Unseen
// frames are ignored; removing a pinned frame is an error.
func (lruk *LRUKReplacer) Remove(frameId common.FrameId) error {
	if frameId < 0 || int(frameId) >= lruk.numFrames {
		return fmt.Errorf("remove frame %d: %w", frameId, ErrInvalidFrameId)
	}
	lruk.mu.Lock()
	defer lruk.mu.Unlock()

	entry, ok := lruk.index[frameId]
	if !ok {
		return nil
	}
	if !entry.evictable {
		return fmt.Errorf("remove frame %d: %w", frameId, ErrFramePinned)
	}
	if entry.accessCount < lruk.k {
		lruk.historyList.Remove(entry.elem)
	} else {
		lruk.bufferList.Remove(entry.elem)
	}
	delete(lruk.index, frameId)
	lruk.currSize--
	return nil
}

// Size returns the number of evictable frames.
func (lruk *LRUKReplacer) Size() int {
	lruk.mu.Lock()
	defer lruk.mu.Unlock()
	return lruk.currSize
}

// evictOne scans the history list back to front (oldest first), then the
// buffer list, and removes the first evictable frame it finds. Caller must
// hold the lock.
func (lruk *LRUKReplacer) evictOne() (common.FrameId, bool) {
	for _, l := range []*list.List{&lruk.historyList, &lruk.bufferList} {
		for elem := l.Back(); elem != nil; elem = elem.Prev() {
			frameId := elem.Value.(common.FrameId)
			if !lruk.index[frameId].evictable {
				continue
			}
			l.Remove(elem)
			delete(lruk.index, frameId)
			lruk.currSize--
			return frameId, true
		}
	}
	return 0, false
}
