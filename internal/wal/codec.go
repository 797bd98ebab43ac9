package wal

import (
	"fmt"
	"io"

	"github.com/Ethkuil/TDB/internal/bx"
	"github.com/Ethkuil/TDB/internal/rc"
)

// ErrorPayload carries the raw bytes of a reserved ERROR-type entry. Nothing
// builds these; recovery skips them outright.
type ErrorPayload struct {
	Raw []byte
}

func (ErrorPayload) payload() {}

const commitPayloadSize = 4       // commit_xid
const recordFixedPayloadSize = 18 // table_id(4) + rid(6) + data_offset(4) + data_len(4)

// payloadLen reports the encoded byte length of an entry's payload, which is
// also the value stored in the header's log_entry_len field.
func payloadLen(p Payload) int {
	switch v := p.(type) {
	case BeginPayload, RollbackPayload:
		return 0
	case CommitPayload:
		return commitPayloadSize
	case RecordPayload:
		return recordFixedPayloadSize + len(v.Data)
	case ErrorPayload:
		return len(v.Raw)
	default:
		return 0
	}
}

// Encode serializes a LogEntry to its bit-exact wire form: an 18-byte
// header immediately followed by the payload, with no padding.
func Encode(e *LogEntry) []byte {
	plen := payloadLen(e.Payload)
	buf := make([]byte, HeaderSize+plen)

	bx.PutU16(buf[0:2], uint16(e.Header.LogType))
	bx.PutI32(buf[2:6], e.Header.TrxID)
	bx.PutI32(buf[6:10], int32(plen))
	bx.PutI64(buf[10:18], e.Header.LSN)

	body := buf[HeaderSize:]
	switch v := e.Payload.(type) {
	case BeginPayload, RollbackPayload:
		// no payload bytes
	case CommitPayload:
		bx.PutI32(body[0:4], v.CommitXID)
	case RecordPayload:
		bx.PutI32(body[0:4], v.TableID)
		bx.PutU32(body[4:8], v.RID.PageNum)
		bx.PutU16(body[8:10], v.RID.Slot)
		bx.PutI32(body[10:14], v.DataOffset)
		bx.PutI32(body[14:18], int32(len(v.Data)))
		copy(body[18:], v.Data)
	case ErrorPayload:
		copy(body, v.Raw)
	}
	return buf
}

// DecodeHeader reads one fixed-size header from r. It returns io.EOF
// (unmodified) when r is cleanly exhausted before any header bytes are
// read, and io.ErrUnexpectedEOF when a header is only partially present —
// the iterator treats the first as a clean end of log and the second as a
// torn tail.
func DecodeHeader(r io.Reader) (LogEntryHeader, error) {
	var raw [HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return LogEntryHeader{}, err
	}
	return LogEntryHeader{
		LogType:     LogType(bx.U16(raw[0:2])),
		TrxID:       bx.I32(raw[2:6]),
		LogEntryLen: bx.I32(raw[6:10]),
		LSN:         bx.I64(raw[10:18]),
	}, nil
}

// DecodePayload reads header.LogEntryLen bytes from r and decodes them
// according to header.LogType.
func DecodePayload(header LogEntryHeader, r io.Reader) (Payload, error) {
	n := int(header.LogEntryLen)
	if n < 0 {
		return nil, fmt.Errorf("wal: negative log_entry_len: %w", rc.ErrIO)
	}

	switch header.LogType {
	case MtrBegin, MtrRollback:
		if _, err := io.CopyN(io.Discard, r, int64(n)); err != nil {
			return nil, err
		}
		if header.LogType == MtrBegin {
			return BeginPayload{}, nil
		}
		return RollbackPayload{}, nil
	case MtrCommit:
		body := make([]byte, n)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, err
		}
		if n < commitPayloadSize {
			return nil, fmt.Errorf("wal: short commit payload: %w", rc.ErrIO)
		}
		return CommitPayload{CommitXID: bx.I32(body[0:4])}, nil
	case RecordInsert, RecordDelete, RecordUpdate:
		body := make([]byte, n)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, err
		}
		if n < recordFixedPayloadSize {
			return nil, fmt.Errorf("wal: short record payload: %w", rc.ErrIO)
		}
		dataLen := int(bx.I32(body[14:18]))
		if recordFixedPayloadSize+dataLen != n {
			return nil, fmt.Errorf("wal: record payload length mismatch: %w", rc.ErrIO)
		}
		return RecordPayload{
			TableID:    bx.I32(body[0:4]),
			RID:        RID{PageNum: bx.U32(body[4:8]), Slot: bx.U16(body[8:10])},
			DataOffset: bx.I32(body[10:14]),
			Data:       append([]byte(nil), body[recordFixedPayloadSize:]...),
		}, nil
	case ErrorType:
		body := make([]byte, n)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, err
		}
		return ErrorPayload{Raw: body}, nil
	default:
		return nil, fmt.Errorf("wal: unknown log_type %d: %w", header.LogType, rc.ErrIO)
	}
}
