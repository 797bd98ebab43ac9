// Package wal implements the append-only redo log: LogEntry framing, the
// LogFile/LogBuffer/LogEntryIterator trio, and the LogManager facade.
// Recovery itself lives in the sibling recovery package so this one stays
// free of any transaction-manager dependency.
package wal

import "github.com/Ethkuil/TDB/internal/rc"

// LogType tags a LogEntry's payload shape.
type LogType uint16

const (
	MtrBegin LogType = iota + 1
	MtrCommit
	MtrRollback
	RecordInsert
	RecordDelete
	RecordUpdate
	// ErrorType is a reserved sentinel; recovery skips it outright.
	ErrorType
)

// LogEntryHeader is the fixed 18-byte framing record that precedes every
// entry's payload.
type LogEntryHeader struct {
	LogType      LogType
	TrxID        int32
	LogEntryLen  int32
	LSN          int64
}

const HeaderSize = 2 + 4 + 4 + 8

// RID locates a row within a table: (page_num, slot_num).
type RID struct {
	PageNum uint32
	Slot    uint16
}

// Payload is the sum-type member carried by a LogEntry. Each concrete type
// below implements it; the encoder type-switches over Payload instead of
// branching on LogType a second time, while decoding and recovery dispatch
// on the header's LogType.
type Payload interface {
	payload()
}

// BeginPayload is MTR_BEGIN's (empty) payload.
type BeginPayload struct{}

// RollbackPayload is MTR_ROLLBACK's (empty) payload.
type RollbackPayload struct{}

// CommitPayload is MTR_COMMIT's payload.
type CommitPayload struct {
	CommitXID int32
}

// RecordPayload is the payload for INSERT/DELETE/UPDATE-style mutation
// entries.
type RecordPayload struct {
	TableID    int32
	RID        RID
	DataOffset int32
	Data       []byte
}

func (BeginPayload) payload()    {}
func (RollbackPayload) payload() {}
func (CommitPayload) payload()   {}
func (RecordPayload) payload()   {}

// LogEntry pairs a header with its typed payload.
type LogEntry struct {
	Header  LogEntryHeader
	Payload Payload
}

// BuildMtrEntry constructs a begin/rollback entry. typ must be MtrBegin or
// MtrRollback.
func BuildMtrEntry(typ LogType, trxID int32) (*LogEntry, error) {
	switch typ {
	case MtrBegin:
		return &LogEntry{Header: LogEntryHeader{LogType: typ, TrxID: trxID}, Payload: BeginPayload{}}, nil
	case MtrRollback:
		return &LogEntry{Header: LogEntryHeader{LogType: typ, TrxID: trxID}, Payload: RollbackPayload{}}, nil
	default:
		return nil, rc.ErrInvalidArgument
	}
}

// BuildCommitEntry constructs an MTR_COMMIT entry.
func BuildCommitEntry(trxID, commitXID int32) *LogEntry {
	return &LogEntry{
		Header:  LogEntryHeader{LogType: MtrCommit, TrxID: trxID},
		Payload: CommitPayload{CommitXID: commitXID},
	}
}

// BuildRecordEntry constructs a record-mutation entry, copying data into a
// fresh buffer so later mutation of the caller's slice can't corrupt the
// logged entry.
func BuildRecordEntry(typ LogType, trxID, tableID int32, rid RID, dataOffset int32, data []byte) (*LogEntry, error) {
	switch typ {
	case RecordInsert, RecordDelete, RecordUpdate:
	default:
		return nil, rc.ErrInvalidArgument
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return &LogEntry{
		Header: LogEntryHeader{LogType: typ, TrxID: trxID},
		Payload: RecordPayload{
			TableID:    tableID,
			RID:        rid,
			DataOffset: dataOffset,
			Data:       cp,
		},
	}, nil
}
