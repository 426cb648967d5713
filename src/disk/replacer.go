package disk

import "mini-db-golang/src/common"

// Replacer decides which buffer pool frame to reclaim. The buffer pool
// manager calls RecordAccess on every page touch, keeps pinned frames
// non-evictable, and asks for a victim with Evict when the free list is
// empty.
type Replacer interface {
	RecordAccess(frameId common.FrameId) error
	SetEvictable(frameId common.FrameId, evictable bool) error
	Evict() (common.FrameId, bool)
	Remove(frameId common.FrameId) error
	Size() int
}
