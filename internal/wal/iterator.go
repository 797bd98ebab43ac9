package wal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Ethkuil/TDB/internal/rc"
)

// LogEntryIterator is a forward-only cursor over a LogFile, independent of
// whatever handle the file keeps open for writing.
type LogEntryIterator struct {
	rf    *os.File
	br    *bufio.Reader
	cur   *LogEntry
	valid bool
}

// NewLogEntryIterator opens a fresh read handle on lf positioned at the
// start of the file.
func NewLogEntryIterator(lf *LogFile) (*LogEntryIterator, error) {
	rf, err := os.Open(lf.Path())
	if err != nil {
		return nil, err
	}
	return &LogEntryIterator{rf: rf, br: bufio.NewReader(rf)}, nil
}

// Next reads the next entry. It destroys the previously parsed entry before
// constructing the replacement — cur is always reassigned rather than
// mutated in place.
//
// Returns rc.ErrRecordEOF on a clean end of log. Returns a wrapped
// rc.ErrIO if a header was read successfully but the payload read failed
// (a torn tail) or if a partial header was read.
func (it *LogEntryIterator) Next() error {
	it.cur = nil
	it.valid = false

	header, err := DecodeHeader(it.br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return rc.ErrRecordEOF
		}
		// A header that started but didn't finish is a torn tail at the
		// header level; treat it the same as a torn payload.
		return fmt.Errorf("wal: torn header: %w", rc.ErrIO)
	}

	payload, err := DecodePayload(header, it.br)
	if err != nil {
		return fmt.Errorf("wal: torn payload at lsn %d: %w", header.LSN, rc.ErrIO)
	}

	it.cur = &LogEntry{Header: header, Payload: payload}
	it.valid = true
	return nil
}

// Valid reports whether LogEntry returns a usable entry.
func (it *LogEntryIterator) Valid() bool {
	return it.valid
}

// LogEntry returns the last successfully parsed entry.
func (it *LogEntryIterator) LogEntry() *LogEntry {
	return it.cur
}

// Close releases the iterator's independent read handle.
func (it *LogEntryIterator) Close() error {
	return it.rf.Close()
}
