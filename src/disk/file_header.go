package disk

import (
	"unsafe"

	"mini-db-golang/src/common"
)

// maxFreePages is how many deallocated page ids fit in the header page
// after the nextPageId/numFreePages prefix.
const maxFreePages = (pageSize - 8) / 4

// headerPage is the in-place view of page 0: the next page id to hand out
// plus a bounded list of deallocated page ids available for reuse.
type headerPage struct {
	nextPageId   common.PageId
	numFreePages int32
	freeList     [maxFreePages]common.PageId
}

func headerPageFrom(data []byte) *headerPage {
	return (*headerPage)(unsafe.Pointer(&data[0]))
}

func (hdr *headerPage) init() {
	hdr.nextPageId = 1
	hdr.numFreePages = 0
}

func (hdr *headerPage) get(i int32) common.PageId {
	return hdr.freeList[i]
}

func (hdr *headerPage) hasFreePage() bool {
	return hdr.numFreePages > 0
}

func (hdr *headerPage) popFreePage() common.PageId {
	ret := hdr.freeList[0]
	for i := int32(1); i < hdr.numFreePages; i++ {
		hdr.freeList[i-1] = hdr.freeList[i]
	}
	hdr.numFreePages--
	return ret
}

func (hdr *headerPage) pushFreePage(pageId common.PageId) bool {
	if hdr.numFreePages >= maxFreePages {
		return false
	}
	hdr.freeList[hdr.numFreePages] = pageId
	hdr.numFreePages++
	return true
}
