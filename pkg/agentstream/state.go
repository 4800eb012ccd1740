package agentstream

// State is the lifecycle position of a Stream.
type State int

const (
	// StateStreaming accepts fragments and emits deltas.
	StateStreaming State = iota

	// StateFlushing is entered at end of input while the decoder is flushed
	// and the pending line buffer discarded.
	StateFlushing

	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStreaming:
		return "streaming"
	case StateFlushing:
		return "flushing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stats counts what a Stream processed.
type Stats struct {
	Fragments int `json:"fragments"`
	Bytes     int `json:"bytes"`
	Records   int `json:"records"`
	Deltas    int `json:"deltas"`
	Malformed int `json:"malformed"`

	// DiscardedBytes is the size of the unterminated trailing line (plus
	// undecoded bytes on abort) that was dropped when the stream ended.
	DiscardedBytes int `json:"discarded_bytes"`
}
