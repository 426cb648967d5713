package disk

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/ncw/directio"
	log "github.com/sirupsen/logrus"

	"mini-db-golang/src/common"
	"mini-db-golang/src/container"
)

const pageTableBucketSize = 8

// BufferPoolManager owns a fixed set of frames and decides which disk pages
// occupy them. Resident pages are tracked in an extendible hash table from
// page id to frame id; victims come from the replacer once the free list is
// exhausted.
type BufferPoolManager struct {
	size        int
	pages       []Page
	replacer    Replacer
	freeList    list.List
	pageTable   *container.ExtendibleHashTable[common.PageId, common.FrameId]
	diskManager *DiskManager
	mu          sync.Mutex
}

func NewBufferPoolManager(size int, diskManager *DiskManager, replacer Replacer) *BufferPoolManager {
	bpm := &BufferPoolManager{
		size:        size,
		pages:       make([]Page, size),
		replacer:    replacer,
		pageTable:   container.NewExtendibleHashTable[common.PageId, common.FrameId](pageTableBucketSize),
		diskManager: diskManager,
	}
	for i := 0; i < size; i++ {
		bpm.pages[i] = Page{
			data:     directio.AlignedBlock(pageSize),
			pageId:   common.InvalidPageId,
			pinCount: 0,
			isDirty:  false,
		}
		bpm.freeList.PushBack(common.FrameId(i))
	}
	return bpm
}

// FetchPage returns the requested page pinned, loading it from disk into a
// free or victim frame if it is not resident.
func (bpm *BufferPoolManager) FetchPage(pageId common.PageId) (*Page, error) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	if frameId, ok := bpm.pageTable.Find(pageId); ok {
		page := &bpm.pages[frameId]
		page.pinCount++
		bpm.pinFrame(frameId)
		return page, nil
	}
	frameId, err := bpm.findAvailableFrame()
	if err != nil {
		log.Warnf("Buffer pool is full, cannot fetch page %d.", pageId)
		return nil, err
	}
	page := &bpm.pages[frameId]
	bpm.evictResident(page)
	if err := bpm.diskManager.ReadPage(pageId, page.Data()); err != nil {
		log.WithError(err).Warnf("Cannot read page %d from disk.", pageId)
		bpm.freeList.PushBack(frameId)
		return nil, err
	}

	page.pageId = pageId
	page.pinCount = 1
	bpm.pageTable.Insert(pageId, frameId)
	bpm.pinFrame(frameId)
	return page, nil
}

// UnpinPage drops one pin on the page, marking it dirty if the caller wrote
// to it. A page whose pin count reaches zero becomes evictable.
func (bpm *BufferPoolManager) UnpinPage(pageId common.PageId, isDirty bool) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable.Find(pageId)
	if !ok {
		log.Warnf("Trying to unpin page %d, but the page is not in the buffer.", pageId)
		return
	}
	page := &bpm.pages[frameId]
	if page.pinCount == 0 {
		log.Warnf("Trying to unpin page %d, but page's pin count is zero.", pageId)
		return
	}
	page.pinCount--
	page.isDirty = page.isDirty || isDirty
	if page.pinCount == 0 {
		if err := bpm.replacer.SetEvictable(frameId, true); err != nil {
			log.WithError(err).Fatalf("Cannot mark frame %d evictable.", frameId)
		}
	}
}

// FlushPage writes the page back to disk if it is resident and dirty.
func (bpm *BufferPoolManager) FlushPage(pageId common.PageId) error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable.Find(pageId)
	if !ok {
		log.Warnf("Page %d is not in buffer. Cannot flush page.", pageId)
		return nil
	}
	return bpm.flushFrame(&bpm.pages[frameId])
}

// NewPage allocates a fresh page on disk and returns it pinned in a frame.
func (bpm *BufferPoolManager) NewPage() (*Page, error) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, err := bpm.findAvailableFrame()
	if err != nil {
		log.Warnf("Buffer pool is full, cannot create a new page.")
		return nil, err
	}
	page := &bpm.pages[frameId]
	bpm.evictResident(page)
	newPageId, err := bpm.diskManager.AllocatePage()
	if err != nil {
		log.WithError(err).Errorf("Allocate page failed.")
		bpm.freeList.PushBack(frameId)
		return nil, err
	}
	if err := bpm.diskManager.ReadPage(newPageId, page.Data()); err != nil {
		log.WithError(err).Errorf("Cannot read page %d from disk.", newPageId)
		bpm.freeList.PushBack(frameId)
		return nil, err
	}
	page.pageId = newPageId
	page.pinCount = 1
	bpm.pageTable.Insert(newPageId, frameId)
	bpm.pinFrame(frameId)
	return page, nil
}

// DeletePage evicts the page from the pool and returns it to the disk
// manager's free list. Fails if the page is still pinned.
func (bpm *BufferPoolManager) DeletePage(pageId common.PageId) error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable.Find(pageId)
	if !ok {
		return bpm.diskManager.DeallocatePage(pageId)
	}
	page := &bpm.pages[frameId]
	if page.pinCount > 0 {
		return fmt.Errorf("delete page %d: %w", pageId, ErrPagePinned)
	}
	if err := bpm.diskManager.DeallocatePage(pageId); err != nil {
		return err
	}
	if err := bpm.replacer.Remove(frameId); err != nil {
		log.WithError(err).Fatalf("Cannot remove frame %d from replacer.", frameId)
	}
	page.pageId = common.InvalidPageId
	page.isDirty = false
	page.pinCount = 0
	page.resetMemory()
	bpm.pageTable.Remove(pageId)
	bpm.freeList.PushBack(frameId)
	return nil
}

// FlushAllPages writes every resident dirty page back to disk.
func (bpm *BufferPoolManager) FlushAllPages() error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	for i := range bpm.pages {
		if bpm.pages[i].pageId == common.InvalidPageId {
			continue
		}
		if err := bpm.flushFrame(&bpm.pages[i]); err != nil {
			return err
		}
	}
	return nil
}

// findAvailableFrame takes a frame off the free list, falling back to the
// replacer for a victim.
func (bpm *BufferPoolManager) findAvailableFrame() (common.FrameId, error) {
	if bpm.freeList.Len() == 0 {
		frameId, ok := bpm.replacer.Evict()
		if !ok {
			return 0, ErrBufferPoolFull
		}
		return frameId, nil
	}
	elem := bpm.freeList.Front()
	bpm.freeList.Remove(elem)
	return elem.Value.(common.FrameId), nil
}

// evictResident writes back and unmaps whatever page currently occupies the
// frame, leaving it ready for reuse.
func (bpm *BufferPoolManager) evictResident(page *Page) {
	if page.pageId == common.InvalidPageId {
		return
	}
	if page.isDirty {
		if err := bpm.diskManager.WritePage(page.pageId, page.Data()); err != nil {
			log.WithError(err).Fatalf("Cannot write page %d back.", page.pageId)
		}
		page.isDirty = false
	}
	bpm.pageTable.Remove(page.pageId)
	page.pageId = common.InvalidPageId
}

func (bpm *BufferPoolManager) flushFrame(page *Page) error {
	if !page.isDirty {
		return nil
	}
	if err := bpm.diskManager.WritePage(page.pageId, page.Data()); err != nil {
		log.WithError(err).Errorf("Cannot flush page %d.", page.pageId)
		return err
	}
	page.isDirty = false
	return nil
}

// pinFrame records the access and keeps the frame off the victim list while
// its page is pinned.
func (bpm *BufferPoolManager) pinFrame(frameId common.FrameId) {
	if err := bpm.replacer.RecordAccess(frameId); err != nil {
		log.WithError(err).Fatalf("Cannot record access for frame %d.", frameId)
	}
	if err := bpm.replacer.SetEvictable(frameId, false); err != nil {
		log.WithError(err).Fatalf("Cannot pin frame %d.", frameId)
	}
}
