// Package recovery implements the one-pass redo/rollback replay driver run
// at startup against the write-ahead log. The transaction manager and
// database handle it drives are external collaborators — only their
// interfaces live here; recovery leans on a transaction-table contract
// without owning either side of it.
package recovery

import (
	"errors"
	"log/slog"

	"github.com/Ethkuil/TDB/internal/rc"
	"github.com/Ethkuil/TDB/internal/wal"
)

// Trx is the minimal per-transaction contract recovery drives.
type Trx interface {
	// Redo applies entry's effect to db. Called once per record-mutation,
	// MTR_ROLLBACK and MTR_COMMIT entry of the transaction, including
	// entries seen while the transaction is still open; implementations
	// are expected to stage mutations internally and apply them only once
	// the transaction's outcome (commit) is observed.
	Redo(db any, entry *wal.LogEntry) error

	// Rollback undoes everything staged by Redo. Called once, at the end
	// of the scan, for every transaction still open when the log ends.
	Rollback() error
}

// TrxManager is consumed by Recover to create and look up transactions by
// id.
type TrxManager interface {
	CreateTrx(trxID int32) (Trx, error)
	FindTrx(trxID int32) (Trx, bool)
}

// Recover performs a one-pass scan: classify each entry by type, redo
// committed/in-flight mutations through the transaction object, and roll
// back whatever is still open at end-of-log.
//
// A torn tail (header read ok, payload read failed, or a partial header) is
// treated the same as reaching end-of-log: iteration stops and every
// transaction still open is rolled back, since a commit entry that never
// finished writing can't have made it to disk.
func Recover(db any, lf *wal.LogFile, tm TrxManager) error {
	it, err := wal.NewLogEntryIterator(lf)
	if err != nil {
		return err
	}
	defer it.Close()

	uncommitted := make(map[int32]struct{})

	for {
		err := it.Next()
		if err != nil {
			if errors.Is(err, rc.ErrRecordEOF) {
				break
			}
			slog.Warn("recovery: stopping scan at torn tail", "err", err)
			break
		}

		entry := it.LogEntry()
		switch entry.Header.LogType {
		case wal.MtrBegin:
			if _, err := tm.CreateTrx(entry.Header.TrxID); err != nil {
				return err
			}
			uncommitted[entry.Header.TrxID] = struct{}{}

		case wal.MtrCommit:
			if trx, ok := tm.FindTrx(entry.Header.TrxID); ok {
				if err := trx.Redo(db, entry); err != nil {
					return err
				}
			}
			delete(uncommitted, entry.Header.TrxID)

		case wal.ErrorType:
			// Reserved sentinel, ignored by recovery.
			continue

		default:
			// Record mutations (and MTR_ROLLBACK) are redone through
			// the transaction object, which buffers them until
			// commit/rollback is observed.
			if trx, ok := tm.FindTrx(entry.Header.TrxID); ok {
				if err := trx.Redo(db, entry); err != nil {
					return err
				}
			}
		}
	}

	for trxID := range uncommitted {
		trx, ok := tm.FindTrx(trxID)
		if !ok {
			continue
		}
		if err := trx.Rollback(); err != nil {
			return err
		}
	}

	return nil
}
