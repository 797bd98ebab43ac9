package wal

import (
	"os"
	"sync"
)

// LogFile is the append-only sequential file backing the log: blocking
// write with an offset that only ever advances. It holds only the write
// handle; a LogEntryIterator opens its own read handle from Path.
type LogFile struct {
	path string

	mu sync.Mutex
	wf *os.File
}

// OpenLogFile opens (creating if necessary) the log file at path for
// append-only writing.
func OpenLogFile(path string) (*LogFile, error) {
	wf, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &LogFile{path: path, wf: wf}, nil
}

// Path returns the file's path, mainly so the iterator can open its own
// independent read handle.
func (lf *LogFile) Path() string {
	return lf.path
}

// Write appends b as a single contiguous write. Returns the number of bytes
// actually written so callers can recover the clean prefix on a partial
// write — an entry boundary already committed to disk is preserved.
func (lf *LogFile) Write(b []byte) (int, error) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	return lf.wf.Write(b)
}

// Sync forces any buffered writes to stable storage.
func (lf *LogFile) Sync() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	return lf.wf.Sync()
}

// Close releases the underlying file handle.
func (lf *LogFile) Close() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	return lf.wf.Close()
}
