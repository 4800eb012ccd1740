package agentstream

import (
	"io"

	"go.uber.org/zap"
)

const defaultReadSize = 32 * 1024

// Option configures a Stream created with NewStream or Consume.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	tee      io.Writer
	readSize int
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:   zap.NewNop(),
		readSize: defaultReadSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger malformed records and aborts are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTee copies every raw fragment to w before it is decoded. Only used by
// Consume. A failing tee is logged and detached; it never fails the stream.
func WithTee(w io.Writer) Option {
	return func(o *options) {
		o.tee = w
	}
}

// WithReadSize sets the buffer size Consume reads fragments with.
func WithReadSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readSize = n
		}
	}
}
