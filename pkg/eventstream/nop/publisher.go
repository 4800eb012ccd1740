// Package nop provides the eventstream publisher used when event publishing
// is disabled.
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/tabagent/pkg/eventstream"
)

// Publisher accepts run events and drops them, counting how many it saw.
type Publisher struct {
	published atomic.Int64
}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishRun validates input and otherwise only counts the event.
func (p *Publisher) PublishRun(_ context.Context, event *eventstream.RunCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilRunEvent
	}

	p.published.Add(1)
	return nil
}

// Published returns how many events were accepted.
func (p *Publisher) Published() int64 {
	return p.published.Load()
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*Publisher)(nil)
