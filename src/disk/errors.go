package disk

import "errors"

var (
	ErrInvalidFrameId = errors.New("frame id out of range")
	ErrFramePinned    = errors.New("frame is pinned")
	ErrBufferPoolFull = errors.New("buffer pool is full")
	ErrPagePinned     = errors.New("page is still pinned")
)
