// Package demo provides a minimal in-memory Database/TrxManager/Trx
// implementation of the interfaces recovery.Recover consumes. It exists to
// exercise the frame pool and the log/recovery subsystems end-to-end in
// cmd/coredbctl without implying a real MVCC transaction engine.
//
// Each transaction buffers its record-mutation entries internally and only
// applies them to the frame pool once its MTR_COMMIT entry is observed:
// redo is driven through the transaction object so it can stage mutations
// and only apply them on an observed commit.
package demo

import (
	"sync"

	"github.com/Ethkuil/TDB/internal/framepool"
	"github.com/Ethkuil/TDB/internal/recovery"
	"github.com/Ethkuil/TDB/internal/wal"
)

// Database is the opaque handle recovery passes through to Trx.Redo; here
// it just carries the frame pool the demo transactions mutate.
type Database struct {
	FM *framepool.FrameManager
}

// NewDatabase wires a Database around an initialized FrameManager.
func NewDatabase(fm *framepool.FrameManager) *Database {
	return &Database{FM: fm}
}

// Trx buffers a transaction's record mutations and applies them to the
// frame pool on commit.
type Trx struct {
	id     int32
	db     *Database
	mu     sync.Mutex
	staged []*wal.LogEntry
}

var _ recovery.Trx = (*Trx)(nil)

// Redo buffers entry, or, on an MTR_COMMIT entry, applies every buffered
// mutation to the frame pool.
func (t *Trx) Redo(dbArg any, entry *wal.LogEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry.Header.LogType == wal.MtrCommit {
		return t.applyStagedLocked()
	}
	t.staged = append(t.staged, entry)
	return nil
}

func (t *Trx) applyStagedLocked() error {
	for _, entry := range t.staged {
		rp, ok := entry.Payload.(wal.RecordPayload)
		if !ok {
			continue
		}
		f, ok := t.db.FM.Alloc(rp.TableID, rp.RID.PageNum)
		if !ok {
			return framepool.ErrNoFreeFrame
		}
		copy(f.Data[rp.DataOffset:], rp.Data)
		if err := t.db.FM.Unpin(rp.TableID, rp.RID.PageNum, true); err != nil {
			return err
		}
	}
	t.staged = nil
	return nil
}

// Rollback discards every buffered mutation without touching the frame
// pool.
func (t *Trx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.staged = nil
	return nil
}

// TrxManager is the demo's in-memory registry of open transactions.
type TrxManager struct {
	db *Database

	mu   sync.Mutex
	byID map[int32]*Trx
}

var _ recovery.TrxManager = (*TrxManager)(nil)

// NewTrxManager creates an empty registry bound to db.
func NewTrxManager(db *Database) *TrxManager {
	return &TrxManager{db: db, byID: make(map[int32]*Trx)}
}

// CreateTrx registers a new open transaction with the given id.
func (tm *TrxManager) CreateTrx(trxID int32) (recovery.Trx, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	t := &Trx{id: trxID, db: tm.db}
	tm.byID[trxID] = t
	return t, nil
}

// FindTrx looks up a previously created transaction.
func (tm *TrxManager) FindTrx(trxID int32) (recovery.Trx, bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	t, ok := tm.byID[trxID]
	return t, ok
}
