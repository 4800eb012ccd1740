// Package mock serves a stand-in for a LangGraph agent server's streaming
// run API, for local development and end-to-end tests.
package mock

import "time"

// Config is the mock server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., "127.0.0.1:2024")
	ListenAddr string

	// Delay is slept between streamed events.
	Delay time.Duration

	// ChunkSize splits every event into writes of at most this many bytes,
	// so clients see records and multi-byte characters cut across reads.
	// Zero writes each event whole.
	ChunkSize int

	// InjectMalformed emits one unparseable record after the first delta.
	InjectMalformed bool
}
