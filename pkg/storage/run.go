package storage

import "time"

// Run is one recorded request/response exchange with an agent.
type Run struct {
	ID          string `json:"id"`
	AssistantID string `json:"assistant_id"`
	Target      string `json:"target"`

	// Query is the user message the run was started with.
	Query string `json:"query"`

	// Output is the concatenation of every assistant delta received.
	Output string `json:"output"`

	// Error is the terminal failure message, empty when the stream ended
	// normally.
	Error string `json:"error,omitempty"`

	Stats RunStats `json:"stats"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// RunStats mirrors the counters of the stream that produced a run.
type RunStats struct {
	Fragments      int `json:"fragments"`
	Bytes          int `json:"bytes"`
	Records        int `json:"records"`
	Deltas         int `json:"deltas"`
	Malformed      int `json:"malformed"`
	DiscardedBytes int `json:"discarded_bytes"`
}

// Failed reports whether the run ended with a terminal error.
func (r *Run) Failed() bool {
	return r.Error != ""
}

// Duration is the wall time between start and completion.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Clone returns a copy of r that shares no state with it.
func (r *Run) Clone() *Run {
	c := *r
	return &c
}
