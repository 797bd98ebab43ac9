// Package framepool implements the pinned-frame cache over a bounded
// physical page pool: FrameAllocator, FrameCache, and the FrameManager
// facade. It never touches a file itself — callers supply identity
// (FrameId) and, on eviction, a callback that knows how to persist a dirty
// frame.
package framepool

import "github.com/Ethkuil/TDB/internal/storage"

// FrameId uniquely identifies a page within an open file. FileDesc is
// caller-assigned and stable for the lifetime of an open file; re-opening a
// file may hand out a different descriptor.
type FrameId struct {
	FileDesc int32
	PageNum  uint32
}

// Frame is a single page-sized buffer plus bookkeeping. A Frame is resident
// iff it is present in a FrameCache; only resident frames are ever handed
// back by Alloc/Get.
type Frame struct {
	ID       FrameId
	PageNum  uint32
	PinCount uint32
	Dirty    bool
	Data     []byte
}

// CanEvict reports whether this frame is a candidate for eviction: unpinned.
// Policy-specific checks (e.g. "dirty bit is resolvable") live in the
// caller-supplied EvictAction.
func (f *Frame) CanEvict() bool {
	return f.PinCount == 0
}

func newFrame() *Frame {
	return &Frame{Data: make([]byte, storage.PageSize)}
}
