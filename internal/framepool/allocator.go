package framepool

import "github.com/Ethkuil/TDB/internal/rc"

// FrameAllocator owns a bounded pool of Frame storage. It hands out and
// reclaims empty slots; it does not track page identity — that is the
// FrameManager's job.
type FrameAllocator struct {
	free []*Frame
}

// Init preallocates the pool. poolNum must be positive; allocation failure
// in Go surfaces as an out-of-memory panic from the runtime itself, so the
// only failure mode modeled here is an invalid size.
func (a *FrameAllocator) Init(poolNum int) error {
	if poolNum <= 0 {
		return rc.ErrNoMem
	}
	a.free = make([]*Frame, 0, poolNum)
	for i := 0; i < poolNum; i++ {
		a.free = append(a.free, newFrame())
	}
	return nil
}

// Alloc returns an unused Frame, or (nil, false) when the pool is exhausted.
// The returned Frame has PinCount 0 and undefined Data.
func (a *FrameAllocator) Alloc() (*Frame, bool) {
	n := len(a.free)
	if n == 0 {
		return nil, false
	}
	f := a.free[n-1]
	a.free = a.free[:n-1]
	return f, true
}

// Free returns a Frame to the pool. The caller must have already verified
// PinCount == 0; violating this is a programmer error and panics rather
// than returning an error.
func (a *FrameAllocator) Free(f *Frame) {
	if f.PinCount != 0 {
		panic("framepool: Free called on a pinned frame")
	}
	f.ID = FrameId{}
	f.PageNum = 0
	f.Dirty = false
	a.free = append(a.free, f)
}
