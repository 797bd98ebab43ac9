// Package rc holds the closed taxonomy of return-code style errors shared by
// the frame pool and the log/recovery subsystems. SUCCESS is simply a nil
// error; everything else is one of the sentinels below, wrapped at call
// sites with fmt.Errorf("...: %w", ...).
package rc

import "errors"

var (
	// ErrNoMem is returned when the frame pool or allocator is exhausted.
	ErrNoMem = errors.New("rc: NOMEM")

	// ErrInvalidArgument is returned for null/malformed input (e.g. a nil
	// log entry passed to AppendLog).
	ErrInvalidArgument = errors.New("rc: INVALID_ARGUMENT")

	// ErrInternal marks a violated invariant, such as residual frames at
	// cleanup time.
	ErrInternal = errors.New("rc: INTERNAL")

	// ErrIO covers log read/write failures, including torn tail records.
	ErrIO = errors.New("rc: IOERR")

	// ErrRecordEOF signals a clean end of log during iteration.
	ErrRecordEOF = errors.New("rc: RECORD_EOF")
)
