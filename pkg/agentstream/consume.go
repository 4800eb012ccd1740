package agentstream

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
)

// Consume drives a new Stream from r until end of input, one Read at a time.
// Each fragment is fully processed before the next Read is issued.
//
// On io.EOF the stream is closed normally and Consume returns a nil error.
// When a Read fails, or ctx is done between reads, the stream is aborted and
// the returned error is the *TransportError delivered to the sink. If ctx was
// done, the TransportError wraps ctx.Err() so errors.Is(err, context.Canceled)
// holds.
func Consume(ctx context.Context, r io.Reader, sink Sink, opts ...Option) (Stats, error) {
	s := NewStream(sink, opts...)
	tee := s.opts.tee
	buf := make([]byte, s.opts.readSize)

	for {
		if err := ctx.Err(); err != nil {
			abortErr := s.Abort(err)
			return s.Stats(), abortErr
		}

		n, err := r.Read(buf)
		if n > 0 {
			if tee != nil {
				if _, werr := tee.Write(buf[:n]); werr != nil {
					s.logger.Warn("detaching raw stream tee", zap.Error(werr))
					tee = nil
				}
			}

			if _, werr := s.Write(buf[:n]); werr != nil {
				return s.Stats(), werr
			}
		}

		if errors.Is(err, io.EOF) {
			closeErr := s.Close()
			return s.Stats(), closeErr
		}

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			abortErr := s.Abort(err)
			return s.Stats(), abortErr
		}
	}
}
