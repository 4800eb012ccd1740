package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/tabagent/pkg/storage"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeRunCompleted is emitted after an agent run is recorded.
	EventTypeRunCompleted = "tabagent.run.completed"
)

// RunCompletedEvent is a transport-neutral event payload for a finished run.
type RunCompletedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Run           RunSummary  `json:"run"`
}

// EventSource identifies which agent served the run.
type EventSource struct {
	Target      string `json:"target"`
	AssistantID string `json:"assistant_id"`
}

// RunSummary is the recorded run as carried on the wire.
type RunSummary struct {
	ID          string           `json:"id"`
	Query       string           `json:"query"`
	Output      string           `json:"output"`
	Error       string           `json:"error,omitempty"`
	Failed      bool             `json:"failed"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	DurationMs  int64            `json:"duration_ms"`
	Stats       storage.RunStats `json:"stats"`
}

// NewRunCompletedEvent builds the event for run, stamped with a fresh event
// ID and the current time.
func NewRunCompletedEvent(run *storage.Run) *RunCompletedEvent {
	return &RunCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeRunCompleted,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source: EventSource{
			Target:      run.Target,
			AssistantID: run.AssistantID,
		},
		Run: RunSummary{
			ID:          run.ID,
			Query:       run.Query,
			Output:      run.Output,
			Error:       run.Error,
			Failed:      run.Failed(),
			StartedAt:   run.StartedAt,
			CompletedAt: run.CompletedAt,
			DurationMs:  run.Duration().Milliseconds(),
			Stats:       run.Stats,
		},
	}
}
