package disk

import (
	"sync"

	"mini-db-golang/src/common"
)

// Page is the in-memory image of one disk page, living in a buffer pool
// frame for as long as the pool keeps it resident.
//
// The pin count and dirty flag belong to the buffer pool manager: a page is
// pinned by FetchPage/NewPage, released by UnpinPage, and only a page whose
// pin count has dropped to zero may lose its frame. The embedded RWMutex is
// not taken by the pool itself; it is the latch callers use around reads
// and writes of Data.
type Page struct {
	data     []byte
	pageId   common.PageId
	pinCount int
	isDirty  bool
	sync.RWMutex
}

// Data returns the page's directio-aligned content, always one full page.
func (p *Page) Data() []byte { return p.data }

// PageId returns the disk page currently held, or InvalidPageId for a frame
// sitting on the free list.
func (p *Page) PageId() common.PageId { return p.pageId }

// PinCount returns how many callers currently hold the page.
func (p *Page) PinCount() int { return p.pinCount }

// IsDirty reports whether the content has changes not yet written back.
func (p *Page) IsDirty() bool { return p.isDirty }

// resetMemory zeroes the content when a deleted page releases its frame, so
// the next occupant never sees stale bytes.
func (p *Page) resetMemory() {
	for i := range p.data {
		p.data[i] = 0
	}
}
