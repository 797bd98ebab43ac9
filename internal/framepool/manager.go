package framepool

import (
	"log/slog"
	"sync"

	"github.com/Ethkuil/TDB/internal/rc"
)

const logPrefix = "framepool: "

// EvictAction flushes a dirty frame (or simply discards a clean one) as part
// of eviction. It must not call back into FrameManager on the same
// goroutine and must not block on resources held by a goroutine waiting on
// FrameManager's mutex.
type EvictAction func(f *Frame) error

// FrameManager is the concurrent facade over FrameAllocator and FrameCache.
// One mutex serializes every public entry point; no operation may suspend
// while holding it. This mirrors a single-mutex buffer pool guarding a
// fixed frame slice and an associative index, generalized to a separate
// allocator/cache split and caller-supplied (fd, pageNum) identity instead
// of a single FileSet-scoped key.
type FrameManager struct {
	mu    sync.Mutex
	alloc FrameAllocator
	cache *FrameCache
}

// Init initializes the allocator with poolNum frames and an empty cache.
func (m *FrameManager) Init(poolNum int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.alloc.Init(poolNum); err != nil {
		return err
	}
	m.cache = newFrameCache()
	return nil
}

// Cleanup tears down the cache. It fails with ErrInternal if any frame is
// still resident — a leak detector for callers that forgot to Free.
func (m *FrameManager) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cache.Len() != 0 {
		return rc.ErrInternal
	}
	return nil
}

// Alloc pins and returns the frame for (fileDesc, pageNum). If already
// resident it behaves like Get; otherwise a fresh frame is taken from the
// allocator, tagged, pinned at 1, and inserted into the cache. Returns
// (nil, false) if the allocator is exhausted — callers are expected to run
// EvictFrames and retry.
func (m *FrameManager) Alloc(fileDesc int32, pageNum uint32) (*Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := FrameId{FileDesc: fileDesc, PageNum: pageNum}
	if f, ok := m.cache.Get(id); ok {
		f.PinCount++
		slog.Debug(logPrefix+"alloc hit", "fileDesc", fileDesc, "pageNum", pageNum, "pin", f.PinCount)
		return f, true
	}

	f, ok := m.alloc.Alloc()
	if !ok {
		slog.Debug(logPrefix+"alloc exhausted", "fileDesc", fileDesc, "pageNum", pageNum)
		return nil, false
	}
	if f.PinCount != 0 {
		panic("framepool: newly allocated frame has nonzero pin count")
	}

	f.ID = id
	f.PageNum = pageNum
	f.PinCount = 1
	f.Dirty = false
	m.cache.Put(id, f)

	slog.Debug(logPrefix+"alloc new frame", "fileDesc", fileDesc, "pageNum", pageNum)
	return f, true
}

// Get pins and returns the frame for (fileDesc, pageNum) if resident. It
// never allocates.
func (m *FrameManager) Get(fileDesc int32, pageNum uint32) (*Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := FrameId{FileDesc: fileDesc, PageNum: pageNum}
	f, ok := m.cache.Get(id)
	if !ok {
		return nil, false
	}
	f.PinCount++
	return f, true
}

// Unpin releases one pin on the resident frame for (fileDesc, pageNum)
// without evicting it. The frame stays cached — once its pin count drops
// to zero it becomes a candidate for EvictFrames, the same way a page a
// transaction is done with (but might be re-fetched soon) stays warm in
// the pool instead of being torn down immediately. dirty, if set, marks
// the frame dirty; it never clears an already-set dirty bit.
func (m *FrameManager) Unpin(fileDesc int32, pageNum uint32, dirty bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := FrameId{FileDesc: fileDesc, PageNum: pageNum}
	f, ok := m.cache.Peek(id)
	if !ok {
		return rc.ErrInvalidArgument
	}
	if f.PinCount == 0 {
		panic("framepool: Unpin called on a frame with no outstanding pin")
	}
	f.PinCount--
	if dirty {
		f.Dirty = true
	}
	return nil
}

// Free releases the last pin on (fileDesc, pageNum). frame must be the
// resident frame pointer and its PinCount must be exactly 1 — this is the
// last holder releasing it. Violations are programmer errors and panic.
func (m *FrameManager) Free(fileDesc int32, pageNum uint32, frame *Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := FrameId{FileDesc: fileDesc, PageNum: pageNum}
	resident, ok := m.cache.Peek(id)
	if !ok || resident != frame {
		panic("framepool: Free called with a frame that is not the resident entry")
	}
	if frame.PinCount != 1 {
		panic("framepool: Free called with pin count != 1")
	}

	m.cache.Remove(id)
	frame.PinCount = 0
	m.alloc.Free(frame)
}

// FindList pins and returns every resident frame belonging to fileDesc, for
// use when closing or flushing a file.
func (m *FrameManager) FindList(fileDesc int32) []*Frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Frame
	m.cache.Foreach(func(id FrameId, f *Frame) bool {
		if id.FileDesc == fileDesc {
			f.PinCount++
			out = append(out, f)
		}
		return true
	})
	return out
}

// CloseFile flushes every resident frame of fileDesc through flush, then
// releases each one back to the allocator. Callers must ensure no other
// pin is outstanding on fileDesc's pages before calling this — FindList
// pins each one to exactly 1, and Free (which CloseFile uses to finish
// each frame) panics otherwise. flush is expected to persist a dirty
// frame the same way an EvictAction would; a failure on one frame still
// lets the rest proceed, and the first error seen is returned after every
// frame has been given a chance.
func (m *FrameManager) CloseFile(fileDesc int32, flush func(f *Frame) error) error {
	frames := m.FindList(fileDesc)

	var firstErr error
	for _, f := range frames {
		if err := flush(f); err != nil && firstErr == nil {
			firstErr = err
		}
		m.Free(fileDesc, f.PageNum, f)
	}
	return firstErr
}

// EvictFrames walks the cache in eviction-candidate order, invoking
// evictAction on each unpinned frame. A frame is removed from the cache and
// returned to the allocator only if evictAction succeeds; failures are
// swallowed so other candidates still get a chance. Stops once count
// frames have been evicted or the cache is exhausted.
func (m *FrameManager) EvictFrames(count int, evictAction EvictAction) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	if count <= 0 {
		return 0
	}

	m.cache.Foreach(func(id FrameId, f *Frame) bool {
		if !f.CanEvict() {
			return true
		}
		if err := evictAction(f); err != nil {
			slog.Debug(logPrefix+"evict action failed, frame stays resident",
				"fileDesc", id.FileDesc, "pageNum", id.PageNum, "err", err)
			return true
		}

		m.cache.Remove(id)
		m.alloc.Free(f)
		evicted++
		return evicted < count
	})

	return evicted
}
