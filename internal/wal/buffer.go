package wal

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/Ethkuil/TDB/internal/rc"
)

// defaultHighWater is the byte threshold at which LogBuffer flushes itself
// inline from AppendLogEntry, so a burst of small entries doesn't grow the
// in-memory buffer without bound between explicit syncs.
const defaultHighWater = 64 * 1024

// LogBuffer accumulates serialized LogEntry bytes in insertion order until
// flushed to a LogFile.
type LogBuffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	file      *LogFile
	highWater int
}

// NewLogBuffer creates an empty buffer bound to file, the one LogFile a
// LogManager exclusively owns alongside it.
func NewLogBuffer(file *LogFile) *LogBuffer {
	return &LogBuffer{file: file, highWater: defaultHighWater}
}

// AppendLogEntry serializes entry and appends it to the buffer, flushing
// inline if the high-water mark is hit.
func (b *LogBuffer) AppendLogEntry(entry *LogEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf.Write(Encode(entry))
	if b.buf.Len() >= b.highWater {
		return b.flushLocked()
	}
	return nil
}

// FlushBuffer writes all accumulated bytes to the LogFile in order, then
// clears the buffer. On a partial underlying write, whatever made it to
// disk is dropped from the buffer and the rest is retained for the next
// flush attempt.
func (b *LogBuffer) FlushBuffer() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked()
}

func (b *LogBuffer) flushLocked() error {
	if b.buf.Len() == 0 {
		return nil
	}
	data := b.buf.Bytes()
	n, err := b.file.Write(data)
	if err != nil {
		remaining := append([]byte(nil), data[n:]...)
		b.buf.Reset()
		b.buf.Write(remaining)
		return fmt.Errorf("wal: log write: %w: %w", rc.ErrIO, err)
	}
	b.buf.Reset()
	return nil
}
