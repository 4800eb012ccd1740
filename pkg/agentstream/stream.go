// Package agentstream consumes the Server-Sent-Events stream of an agent run
// and turns it into an ordered sequence of assistant text deltas.
//
// A Stream is a synchronous pipeline driven one fragment at a time:
//
//	raw fragment ─▶ sse.Decoder ─▶ sse.Framer ─▶ Interpreter ─▶ Sink
//
// Each Write runs the whole pipeline before returning, so deltas reach the
// Sink as soon as the record carrying them is complete.
package agentstream

import (
	"go.uber.org/zap"

	"github.com/papercomputeco/tabagent/pkg/sse"
)

// Stream is the decoding state of a single agent response stream. It moves
// from StateStreaming through StateFlushing to StateClosed and never back; a
// new response needs a new Stream.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	sink        Sink
	opts        *options
	logger      *zap.Logger
	decoder     *sse.Decoder
	framer      *sse.Framer
	interpreter *Interpreter
	state       State
	stats       Stats
}

// NewStream returns a Stream in StateStreaming with fresh decoder state and
// an empty pending line buffer.
func NewStream(sink Sink, opts ...Option) *Stream {
	o := newOptions(opts)

	return &Stream{
		sink:        sink,
		opts:        o,
		logger:      o.logger,
		decoder:     sse.NewDecoder(),
		framer:      sse.NewFramer(),
		interpreter: NewInterpreter(),
		state:       StateStreaming,
	}
}

// Write feeds one raw fragment through the pipeline. It always consumes the
// whole fragment; malformed records are reported to the sink and skipped.
func (s *Stream) Write(fragment []byte) (int, error) {
	if s.state != StateStreaming {
		return 0, ErrStreamClosed
	}

	s.stats.Fragments++
	s.stats.Bytes += len(fragment)

	s.dispatch(s.framer.Push(s.decoder.Decode(fragment)))
	return len(fragment), nil
}

// Close signals end of input. Retained bytes are flushed through the decoder
// and the unterminated trailing line, if any, is dropped without being
// treated as a record.
func (s *Stream) Close() error {
	if s.state != StateStreaming {
		return ErrStreamClosed
	}

	s.state = StateFlushing
	s.dispatch(s.framer.Push(s.decoder.Flush()))

	if rest := s.framer.Discard(); rest != "" {
		s.stats.DiscardedBytes += len(rest)
		s.logger.Debug("dropping unterminated trailing line",
			zap.Int("bytes", len(rest)),
		)
	}

	s.state = StateClosed
	s.logger.Debug("stream closed",
		zap.Int("records", s.stats.Records),
		zap.Int("deltas", s.stats.Deltas),
		zap.Int("malformed", s.stats.Malformed),
	)
	return nil
}

// Abort ends the stream after a transport failure or cancellation. Partial
// state is discarded, never force-flushed, and the sink receives exactly one
// *TransportError, which is also returned. Aborting a closed stream is a
// no-op returning nil.
func (s *Stream) Abort(cause error) error {
	if s.state == StateClosed {
		return nil
	}

	s.stats.DiscardedBytes += len(s.framer.Discard()) + s.decoder.Pending()
	s.decoder = sse.NewDecoder()
	s.state = StateClosed

	err := &TransportError{Err: cause}
	// The sink reports the failure to the user.
	s.logger.Debug("stream aborted", zap.Error(cause))
	s.sink.OnError(err)

	return err
}

// State returns the current lifecycle state.
func (s *Stream) State() State {
	return s.state
}

// Stats returns the counters accumulated so far.
func (s *Stream) Stats() Stats {
	return s.stats
}

// dispatch interprets records in order and forwards their deltas.
func (s *Stream) dispatch(records []string) {
	for _, record := range records {
		s.stats.Records++

		deltas, err := s.interpreter.Interpret(record)
		if err != nil {
			s.stats.Malformed++
			s.logger.Warn("skipping malformed record",
				zap.String("record", record),
				zap.Error(err),
			)
			s.sink.OnError(err)
			continue
		}

		for _, delta := range deltas {
			s.stats.Deltas++
			s.sink.OnDelta(delta)
		}
	}
}
