// Package storage defines how recorded agent runs are persisted.
package storage

import (
	"context"
)

// Driver defines the interface for persisting and retrieving runs in a
// storage backend.
type Driver interface {
	// Put stores a run. Storing a run whose ID already exists replaces it.
	Put(ctx context.Context, run *Run) error

	// Get retrieves a run by its ID. Returns NotFoundError if it does not exist.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns at most limit runs, newest first. A limit <= 0 returns
	// every run.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Close closes the store and releases any resources.
	Close() error
}
