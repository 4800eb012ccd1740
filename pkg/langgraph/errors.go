package langgraph

import (
	"errors"
	"fmt"
)

// ErrMissingAssistantID is returned when a run request names no assistant.
var ErrMissingAssistantID = errors.New("assistant id is required")

// StatusError is returned when the agent server answers a run with a
// non-2xx status. Body holds at most maxErrorBody bytes of the response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("agent server returned status %d", e.Code)
	}
	return fmt.Sprintf("agent server returned status %d: %s", e.Code, e.Body)
}
