package disk

import (
	"fmt"
	"io"
	"os"

	"github.com/ncw/directio"
	log "github.com/sirupsen/logrus"

	"mini-db-golang/src/common"
)

const (
	pageSize = 4096
)

// DiskManager reads and writes fixed-size pages of a single database file.
// Page 0 holds the header (next page id, free-page list); data pages start
// at page 1. All I/O goes through directio-aligned buffers.
type DiskManager struct {
	fileName      string
	header        *headerPage
	headerRawData []byte

	fi *os.File
}

func NewDiskManager(fileName string) *DiskManager {
	fi, err := directio.OpenFile(fileName, os.O_CREATE|os.O_RDWR|os.O_SYNC, 0644)
	if err != nil {
		log.WithError(err).Fatalf("Cannot open file %s.", fileName)
	}
	dm := &DiskManager{
		fileName: fileName,
		fi:       fi,
	}
	size, err := dm.getFileSize()
	if err != nil {
		log.WithError(err).Fatalf("Cannot get file size.")
	}
	dm.headerRawData = directio.AlignedBlock(pageSize)
	if size == 0 { // New file
		dm.header = headerPageFrom(dm.headerRawData)
		dm.header.init()
		if err := dm.writeHeaderPage(); err != nil {
			log.WithError(err).Fatalf("Write header page failed.")
		}
	} else {
		if err := dm.readPageData(common.PageId(0), dm.headerRawData); err != nil {
			log.WithError(err).Fatalf("Read header page failed.")
		}
		dm.header = headerPageFrom(dm.headerRawData)
	}
	return dm
}

func (dm *DiskManager) Close() error {
	return dm.fi.Close()
}

// AllocatePage hands out a page id, reusing a deallocated page when one is
// available and extending the file with a zeroed page otherwise.
func (dm *DiskManager) AllocatePage() (common.PageId, error) {
	var pageId common.PageId
	if dm.header.hasFreePage() {
		pageId = dm.header.popFreePage()
	} else {
		pageId = dm.header.nextPageId
		if err := dm.writePageData(pageId, directio.AlignedBlock(pageSize)); err != nil {
			return common.InvalidPageId, fmt.Errorf("extend file with page %d: %w", pageId, err)
		}
		dm.header.nextPageId++
	}
	if err := dm.writeHeaderPage(); err != nil {
		return common.InvalidPageId, fmt.Errorf("write header page: %w", err)
	}
	return pageId, nil
}

// DeallocatePage returns a page to the free list for later reuse.
func (dm *DiskManager) DeallocatePage(pageId common.PageId) error {
	if !dm.header.pushFreePage(pageId) {
		log.Warnf("Free list is full, leaking page %d.", pageId)
		return nil
	}
	return dm.writeHeaderPage()
}

// ReadPage fills data (one page, directio-aligned) with the page's content.
func (dm *DiskManager) ReadPage(pageId common.PageId, data []byte) error {
	return dm.readPageData(pageId, data)
}

func (dm *DiskManager) WritePage(pageId common.PageId, data []byte) error {
	return dm.writePageData(pageId, data)
}

func (dm *DiskManager) getFileSize() (int64, error) {
	stat, err := dm.fi.Stat()
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

func (dm *DiskManager) readPageData(pageId common.PageId, data []byte) error {
	if pageId < 0 {
		return fmt.Errorf("page id %d is negative", pageId)
	}
	offset := int64(pageId) * pageSize
	size, err := dm.getFileSize()
	if err != nil {
		return err
	}
	if offset >= size {
		return fmt.Errorf("read page %d past end of file", pageId)
	}
	if _, err := dm.fi.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	n, err := dm.fi.Read(data)
	if err != nil {
		return err
	}
	if n < pageSize {
		return fmt.Errorf("read %d bytes of page %d, want %d", n, pageId, pageSize)
	}
	return nil
}

func (dm *DiskManager) writePageData(pageId common.PageId, data []byte) error {
	if pageId < 0 {
		return fmt.Errorf("page id %d is negative", pageId)
	}
	offset := int64(pageId) * pageSize
	if _, err := dm.fi.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	if _, err := dm.fi.Write(data); err != nil {
		return err
	}
	return nil
}

func (dm *DiskManager) writeHeaderPage() error {
	return dm.writePageData(common.PageId(0), dm.headerRawData)
}
