// Package kafka publishes run events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/papercomputeco/tabagent/pkg/eventstream"
)

const defaultWriteTimeout = 10 * time.Second

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers are the host:port bootstrap addresses.
	Brokers []string

	// Topic every event is written to.
	Topic string

	// WriteTimeout bounds a single publish. Defaults to 10s.
	WriteTimeout time.Duration

	Logger *zap.Logger
}

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes one message per run, keyed by run ID so every event for a
// run lands on the same partition.
type Publisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewPublisher creates a Kafka publisher. No connection is made until the
// first publish.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka publisher requires a topic")
	}

	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           timeout,
	}

	return newPublisher(w, cfg.Topic, timeout, cfg.Logger), nil
}

func newPublisher(w messageWriter, topic string, timeout time.Duration, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		writer:  w,
		topic:   topic,
		timeout: timeout,
		logger:  logger,
	}
}

// PublishRun marshals event to JSON and writes it synchronously.
func (p *Publisher) PublishRun(ctx context.Context, event *eventstream.RunCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilRunEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling run event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafkago.Message{
		Key:   []byte(event.Run.ID),
		Value: payload,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "schema_version", Value: fmt.Appendf(nil, "%d", event.SchemaVersion)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing run %s to %s: %w", event.Run.ID, p.topic, err)
	}

	p.logger.Debug("published run event",
		zap.String("topic", p.topic),
		zap.String("run_id", event.Run.ID),
		zap.String("event_id", event.EventID),
	)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
