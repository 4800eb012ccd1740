package storage

import "errors"

// ErrNilRun is returned when a nil run is stored.
var ErrNilRun = errors.New("cannot store nil run")

// NotFoundError is returned when a run doesn't exist in the store.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return "run not found"
	}

	return "run not found: " + e.ID
}
