package framepool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ethkuil/TDB/internal/rc"
)

func newTestManager(t *testing.T, poolSize int) *FrameManager {
	t.Helper()
	var fm FrameManager
	require.NoError(t, fm.Init(poolSize))
	return &fm
}

func TestFrameManager_AllocThenGet_SamePinnedFrame(t *testing.T) {
	fm := newTestManager(t, 4)

	f1, ok := fm.Alloc(1, 10)
	require.True(t, ok)
	require.Equal(t, uint32(1), f1.PinCount)

	f2, ok := fm.Get(1, 10)
	require.True(t, ok)
	require.Same(t, f1, f2)
	require.Equal(t, uint32(2), f2.PinCount)
}

func TestFrameManager_Get_NotResident(t *testing.T) {
	fm := newTestManager(t, 4)

	_, ok := fm.Get(1, 99)
	require.False(t, ok)
}

func TestFrameManager_Alloc_ExhaustedReturnsFalse(t *testing.T) {
	fm := newTestManager(t, 1)

	_, ok := fm.Alloc(1, 0)
	require.True(t, ok)

	_, ok = fm.Alloc(1, 1)
	require.False(t, ok, "pool has one frame and it is still pinned")
}

func TestFrameManager_Free_ReleasesBackToAllocator(t *testing.T) {
	fm := newTestManager(t, 1)

	f, ok := fm.Alloc(1, 0)
	require.True(t, ok)
	fm.Free(1, 0, f)

	// The slot should be reusable for a different page now.
	f2, ok := fm.Alloc(2, 0)
	require.True(t, ok)
	require.Equal(t, uint32(1), f2.PinCount)
}

func TestFrameManager_Free_WrongPinCountPanics(t *testing.T) {
	fm := newTestManager(t, 2)

	f, ok := fm.Alloc(1, 0)
	require.True(t, ok)
	// Pin it again so PinCount is 2, then try to Free (requires exactly 1).
	_, ok = fm.Get(1, 0)
	require.True(t, ok)

	require.Panics(t, func() {
		fm.Free(1, 0, f)
	})
}

func TestFrameManager_Free_WrongFramePanics(t *testing.T) {
	fm := newTestManager(t, 2)

	f, ok := fm.Alloc(1, 0)
	require.True(t, ok)
	_ = f

	other := &Frame{}
	require.Panics(t, func() {
		fm.Free(1, 0, other)
	})
}

func TestFrameManager_Cleanup(t *testing.T) {
	fm := newTestManager(t, 2)

	require.NoError(t, fm.Cleanup())

	f, ok := fm.Alloc(1, 0)
	require.True(t, ok)
	require.ErrorIs(t, fm.Cleanup(), rc.ErrInternal)

	fm.Free(1, 0, f)
	require.NoError(t, fm.Cleanup())
}

func TestFrameManager_FindList_PinsAllMatchingFile(t *testing.T) {
	fm := newTestManager(t, 4)

	f0, _ := fm.Alloc(1, 0)
	f1, _ := fm.Alloc(1, 1)
	_, _ = fm.Alloc(2, 0)

	list := fm.FindList(1)
	require.Len(t, list, 2)
	require.Equal(t, uint32(2), f0.PinCount)
	require.Equal(t, uint32(2), f1.PinCount)
}

func TestFrameManager_Unpin_KeepsFrameResidentAtZeroPins(t *testing.T) {
	fm := newTestManager(t, 4)

	f, ok := fm.Alloc(1, 0)
	require.True(t, ok)
	require.NoError(t, fm.Unpin(1, 0, true))
	require.Equal(t, uint32(0), f.PinCount)
	require.True(t, f.Dirty)

	// Still resident: a fresh Get finds the same frame, now pinned again.
	f2, ok := fm.Get(1, 0)
	require.True(t, ok)
	require.Same(t, f, f2)
	require.Equal(t, uint32(1), f2.PinCount)
}

func TestFrameManager_Unpin_NotResidentReturnsInvalidArgument(t *testing.T) {
	fm := newTestManager(t, 4)
	require.ErrorIs(t, fm.Unpin(1, 0, false), rc.ErrInvalidArgument)
}

func TestFrameManager_Unpin_NoOutstandingPinPanics(t *testing.T) {
	fm := newTestManager(t, 4)

	f, ok := fm.Alloc(1, 0)
	require.True(t, ok)
	require.NoError(t, fm.Unpin(1, 0, false))
	require.Equal(t, uint32(0), f.PinCount)

	require.Panics(t, func() {
		_ = fm.Unpin(1, 0, false)
	})
}

func TestFrameManager_EvictFrames_OnlyUnpinned(t *testing.T) {
	fm := newTestManager(t, 4)

	pinned, _ := fm.Alloc(1, 0)
	unpinned1, _ := fm.Alloc(1, 1)
	unpinned2, _ := fm.Alloc(1, 2)

	// Release pins on the two we want eligible for eviction, leaving them
	// resident so EvictFrames has something to pick up.
	require.NoError(t, fm.Unpin(1, 1, false))
	require.NoError(t, fm.Unpin(1, 2, false))

	var evictedIDs []FrameId
	evicted := fm.EvictFrames(5, func(f *Frame) error {
		evictedIDs = append(evictedIDs, f.ID)
		return nil
	})

	require.Equal(t, 2, evicted)
	require.Len(t, evictedIDs, 2)
	require.Equal(t, uint32(1), pinned.PinCount, "pinned frame must never be evicted")

	// pinned frame is still resident and gettable.
	_, ok := fm.Get(1, 0)
	require.True(t, ok)
}

func TestFrameManager_EvictFrames_SwallowsActionFailure(t *testing.T) {
	fm := newTestManager(t, 2)

	// Unpin (not Free) so both frames stay resident as eviction candidates.
	_, _ = fm.Alloc(1, 0)
	require.NoError(t, fm.Unpin(1, 0, false))
	_, _ = fm.Alloc(1, 1)
	require.NoError(t, fm.Unpin(1, 1, false))

	calls := 0
	evicted := fm.EvictFrames(2, func(f *Frame) error {
		calls++
		if f.ID.PageNum == 0 {
			return assertErr
		}
		return nil
	})

	require.Equal(t, 2, calls)
	require.Equal(t, 1, evicted)

	// The frame whose eviction failed is still resident.
	_, ok := fm.Get(1, 0)
	require.True(t, ok)
}

var assertErr = rc.ErrIO

// TestFrameManager_Concurrent_NeverOvercommits runs many goroutines against
// a shared, undersized pool. Each goroutine works under its own file
// descriptor, so its FrameIds are disjoint from every other goroutine's and
// Alloc/Free pairs stay single-owner (mixing concurrent
// Alloc/Free on the *same* FrameId is a caller-side coordination problem,
// not something FrameManager arbitrates) while still contending for the
// same bounded pool of frames.
func TestFrameManager_Concurrent_NeverOvercommits(t *testing.T) {
	const poolSize = 8
	const nGoroutines = 16
	const nOpsEach = 200

	fm := newTestManager(t, poolSize)

	var wg sync.WaitGroup
	for g := 0; g < nGoroutines; g++ {
		wg.Add(1)
		go func(goroutineID int32) {
			defer wg.Done()
			for i := 0; i < nOpsEach; i++ {
				page := uint32(i % 32)
				f, ok := fm.Alloc(goroutineID, page)
				if !ok {
					fm.EvictFrames(poolSize, func(*Frame) error { return nil })
					f, ok = fm.Alloc(goroutineID, page)
				}
				if ok {
					fm.Free(goroutineID, page, f)
				}
			}
		}(int32(g))
	}
	wg.Wait()

	require.NoError(t, fm.Cleanup())
}
