package wal

import (
	"sync/atomic"

	"github.com/Ethkuil/TDB/internal/rc"
)

// LogManager builds entries, routes them through its LogBuffer, and drives
// a sync on commit. It exclusively owns one LogBuffer and one LogFile.
type LogManager struct {
	buf  *LogBuffer
	file *LogFile
	lsn  atomic.Int64
}

// InitLogManager creates an empty LogBuffer and a LogFile bound to path.
func InitLogManager(path string) (*LogManager, error) {
	f, err := OpenLogFile(path)
	if err != nil {
		return nil, err
	}
	return &LogManager{buf: NewLogBuffer(f), file: f}, nil
}

func (m *LogManager) nextLSN() int64 {
	return m.lsn.Add(1)
}

// AppendLog forwards entry to the buffer. A nil entry is rejected with
// ErrInvalidArgument.
func (m *LogManager) AppendLog(entry *LogEntry) error {
	if entry == nil {
		return rc.ErrInvalidArgument
	}
	return m.buf.AppendLogEntry(entry)
}

// AppendBeginTrxLog logs the start of transaction trxID.
func (m *LogManager) AppendBeginTrxLog(trxID int32) error {
	e, err := BuildMtrEntry(MtrBegin, trxID)
	if err != nil {
		return err
	}
	e.Header.LSN = m.nextLSN()
	return m.AppendLog(e)
}

// AppendRollbackTrxLog logs that trxID rolled back.
func (m *LogManager) AppendRollbackTrxLog(trxID int32) error {
	e, err := BuildMtrEntry(MtrRollback, trxID)
	if err != nil {
		return err
	}
	e.Header.LSN = m.nextLSN()
	return m.AppendLog(e)
}

// AppendCommitTrxLog logs that trxID committed under commitXID, then
// forces the buffer to disk. A non-nil return means the commit is not
// durable and must be treated as failed by the caller.
func (m *LogManager) AppendCommitTrxLog(trxID, commitXID int32) error {
	e := BuildCommitEntry(trxID, commitXID)
	e.Header.LSN = m.nextLSN()
	if err := m.AppendLog(e); err != nil {
		return err
	}
	return m.Sync()
}

// AppendRecordLog logs a record mutation.
func (m *LogManager) AppendRecordLog(typ LogType, trxID, tableID int32, rid RID, dataOffset int32, data []byte) error {
	e, err := BuildRecordEntry(typ, trxID, tableID, rid, dataOffset, data)
	if err != nil {
		return err
	}
	e.Header.LSN = m.nextLSN()
	return m.AppendLog(e)
}

// Sync flushes the LogBuffer to the LogFile and forces the file durable.
// fsync-level durability is this method's responsibility, not the
// LogFile's caller's.
func (m *LogManager) Sync() error {
	if err := m.buf.FlushBuffer(); err != nil {
		return err
	}
	return m.file.Sync()
}

// NewLogEntryIterator returns a fresh forward cursor over the log file.
func (m *LogManager) NewLogEntryIterator() (*LogEntryIterator, error) {
	return NewLogEntryIterator(m.file)
}

// File returns the LogFile this manager owns, for callers (recovery) that
// need to iterate it directly.
func (m *LogManager) File() *LogFile {
	return m.file
}

// Close flushes and closes the underlying log file.
func (m *LogManager) Close() error {
	if err := m.Sync(); err != nil {
		_ = m.file.Close()
		return err
	}
	return m.file.Close()
}
