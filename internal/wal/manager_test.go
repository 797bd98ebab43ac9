package wal

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ethkuil/TDB/internal/rc"
)

func newTestLogManager(t *testing.T) *LogManager {
	t.Helper()
	path := t.TempDir() + "/test.wal"
	lm, err := InitLogManager(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lm.Close() })
	return lm
}

func TestLogManager_RoundTrip_PreservesOrderAndBytes(t *testing.T) {
	lm := newTestLogManager(t)

	require.NoError(t, lm.AppendBeginTrxLog(1))
	require.NoError(t, lm.AppendRecordLog(RecordInsert, 1, 7, RID{PageNum: 3, Slot: 2}, 0, []byte("hello")))
	require.NoError(t, lm.AppendRecordLog(RecordUpdate, 1, 7, RID{PageNum: 3, Slot: 2}, 5, []byte("world!!")))
	require.NoError(t, lm.AppendCommitTrxLog(1, 42))

	it, err := lm.NewLogEntryIterator()
	require.NoError(t, err)
	defer it.Close()

	var types []LogType
	for {
		err := it.Next()
		if err == rc.ErrRecordEOF {
			break
		}
		require.NoError(t, err)
		types = append(types, it.LogEntry().Header.LogType)
	}

	require.Equal(t, []LogType{MtrBegin, RecordInsert, RecordUpdate, MtrCommit}, types)
}

func TestLogManager_RoundTrip_PayloadBytesSurvive(t *testing.T) {
	lm := newTestLogManager(t)

	rid := RID{PageNum: 9, Slot: 4}
	data := []byte("payload-bytes")
	require.NoError(t, lm.AppendRecordLog(RecordDelete, 5, 11, rid, 2, data))
	require.NoError(t, lm.Sync())

	it, err := lm.NewLogEntryIterator()
	require.NoError(t, err)
	defer it.Close()

	require.NoError(t, it.Next())
	entry := it.LogEntry()
	require.Equal(t, int32(5), entry.Header.TrxID)

	rp, ok := entry.Payload.(RecordPayload)
	require.True(t, ok)
	require.Equal(t, int32(11), rp.TableID)
	require.Equal(t, rid, rp.RID)
	require.Equal(t, int32(2), rp.DataOffset)
	require.True(t, bytes.Equal(data, rp.Data))

	require.ErrorIs(t, it.Next(), rc.ErrRecordEOF)
}

func TestLogManager_AppendLog_RejectsNil(t *testing.T) {
	lm := newTestLogManager(t)
	require.ErrorIs(t, lm.AppendLog(nil), rc.ErrInvalidArgument)
}

func TestLogEntryIterator_TornTail_StopsCleanlyAtLongestCleanPrefix(t *testing.T) {
	lm := newTestLogManager(t)

	require.NoError(t, lm.AppendBeginTrxLog(1))
	require.NoError(t, lm.AppendRecordLog(RecordInsert, 1, 7, RID{PageNum: 1}, 0, []byte("abc")))
	require.NoError(t, lm.Sync())

	// Simulate a crash mid-write of a third entry: append a full header
	// followed by only the first two of its payload bytes.
	entry, err := BuildRecordEntry(RecordInsert, 1, 7, RID{PageNum: 2}, 0, []byte("defgh"))
	require.NoError(t, err)
	full := Encode(entry)
	torn := full[:HeaderSize+2] // header complete, payload cut short

	f, err := os.OpenFile(lm.File().Path(), os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.Write(torn)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	it, err := lm.NewLogEntryIterator()
	require.NoError(t, err)
	defer it.Close()

	var seen []LogType
	var tornErr error
	for {
		err := it.Next()
		if err == nil {
			seen = append(seen, it.LogEntry().Header.LogType)
			continue
		}
		tornErr = err
		break
	}

	require.Equal(t, []LogType{MtrBegin, RecordInsert}, seen)
	require.ErrorIs(t, tornErr, rc.ErrIO)
	require.NotErrorIs(t, tornErr, rc.ErrRecordEOF)
}

func TestLogManager_Concurrent_AppendsDoNotInterleave(t *testing.T) {
	lm := newTestLogManager(t)

	const nGoroutines = 8
	done := make(chan struct{})
	for g := 0; g < nGoroutines; g++ {
		go func(trxID int32) {
			defer func() { done <- struct{}{} }()
			_ = lm.AppendRecordLog(RecordInsert, trxID, 1, RID{PageNum: uint32(trxID)}, 0, []byte("concurrent-write"))
		}(int32(g))
	}
	for g := 0; g < nGoroutines; g++ {
		<-done
	}
	require.NoError(t, lm.Sync())

	it, err := lm.NewLogEntryIterator()
	require.NoError(t, err)
	defer it.Close()

	seenTrx := make(map[int32]bool)
	for {
		err := it.Next()
		if err == rc.ErrRecordEOF {
			break
		}
		require.NoError(t, err)
		rp, ok := it.LogEntry().Payload.(RecordPayload)
		require.True(t, ok)
		require.True(t, bytes.Equal([]byte("concurrent-write"), rp.Data), "entry bytes must not be interleaved with another goroutine's write")
		seenTrx[it.LogEntry().Header.TrxID] = true
	}
	require.Len(t, seenTrx, nGoroutines)
}
