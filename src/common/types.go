package common

// PageId identifies a page inside the database file. Page 0 is reserved
// for the file header.
type PageId int32

// FrameId identifies a buffer pool frame.
type FrameId int

const InvalidPageId = PageId(-1)
