package agentstream

import (
	"errors"
	"fmt"
)

// ErrStreamClosed is returned when a Stream is written to or closed after it
// reached StateClosed.
var ErrStreamClosed = errors.New("stream closed")

// MalformedRecordError reports a record whose payload could not be
// interpreted. It is recoverable: the record is skipped and the stream
// continues.
type MalformedRecordError struct {
	// Record is the raw record payload, after the "data: " prefix was removed.
	Record string

	// Err is the underlying parse error.
	Err error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %q: %v", e.Record, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// TransportError reports a failed or aborted byte source. It is terminal for
// the stream that surfaced it.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "stream transport failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTerminal reports whether err ended its stream.
func IsTerminal(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
