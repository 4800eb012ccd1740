// Package runner ties one user query to one agent run: it opens the event
// stream, feeds it through agentstream into the caller's sink, and hands the
// finished run to the recording pool.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/tabagent/pkg/agentstream"
	"github.com/papercomputeco/tabagent/pkg/langgraph"
	"github.com/papercomputeco/tabagent/pkg/storage"
	"github.com/papercomputeco/tabagent/runner/worker"
)

// ErrEmptyQuery is returned when a run is requested without any text.
var ErrEmptyQuery = errors.New("query is empty")

// StreamOpener starts a streaming run. *langgraph.Client implements it.
type StreamOpener interface {
	StreamRun(ctx context.Context, req *langgraph.RunRequest) (io.ReadCloser, error)
}

// Config is the runner configuration.
type Config struct {
	// Client opens run streams against the agent server.
	Client StreamOpener

	// Target is recorded with each run to identify the agent server.
	Target string

	// AssistantID is used when a RunInput does not name one.
	AssistantID string

	// Timeout bounds each run from request to end of stream. Zero means no limit.
	Timeout time.Duration

	// Pool records finished runs. A nil Pool disables recording.
	Pool *worker.Pool

	Logger *zap.Logger
}

// RunInput is a single query.
type RunInput struct {
	Query string

	// AssistantID overrides Config.AssistantID for this run.
	AssistantID string

	// Tee receives a copy of the raw event stream.
	Tee io.Writer
}

// Result describes a finished run.
type Result struct {
	RunID  string
	Output string
	Stats  agentstream.Stats

	// Err is the terminal error, nil when the stream ended normally.
	Err error

	StartedAt   time.Time
	CompletedAt time.Time

	// Recorded reports whether the run was handed to the recording pool.
	Recorded bool
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Runner executes agent runs.
type Runner struct {
	config *Config
	logger *zap.Logger
}

// New creates a Runner.
func New(c *Config) (*Runner, error) {
	if c.Client == nil {
		return nil, errors.New("runner requires a stream client")
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{config: c, logger: logger}, nil
}

// Run sends in.Query to the agent and streams the reply into sink. Deltas
// reach sink as they are decoded. Any terminal failure, including failing
// to open the stream, reaches sink.OnError exactly once and is also
// returned, together with a Result holding whatever output arrived first.
func (r *Runner) Run(ctx context.Context, in RunInput, sink agentstream.Sink) (*Result, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	assistantID := in.AssistantID
	if assistantID == "" {
		assistantID = r.config.AssistantID
	}

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID))

	acc := agentstream.NewAccumulator()
	out := agentstream.MultiSink(sink, acc)

	res := &Result{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
	}

	logger.Debug("run starting",
		zap.String("assistant_id", assistantID),
		zap.Int("query_len", len(query)),
	)

	body, err := r.config.Client.StreamRun(ctx, langgraph.NewRunRequest(assistantID, query))
	if err != nil {
		res.Err = &agentstream.TransportError{Err: err}
		out.OnError(res.Err)
	} else {
		opts := []agentstream.Option{agentstream.WithLogger(logger)}
		if in.Tee != nil {
			opts = append(opts, agentstream.WithTee(in.Tee))
		}

		res.Stats, res.Err = agentstream.Consume(ctx, body, out, opts...)
		if cerr := body.Close(); cerr != nil {
			logger.Debug("closing run stream", zap.Error(cerr))
		}
	}

	res.CompletedAt = time.Now().UTC()
	res.Output = acc.Text()

	if res.Err != nil {
		logger.Info("run failed",
			zap.Error(res.Err),
			zap.Int("deltas", res.Stats.Deltas),
		)
	} else {
		logger.Debug("run finished",
			zap.Int("deltas", res.Stats.Deltas),
			zap.Int("malformed", res.Stats.Malformed),
			zap.Duration("duration", res.Duration()),
		)
	}

	if r.config.Pool != nil {
		res.Recorded = r.config.Pool.Enqueue(worker.Job{
			Run: r.record(res, assistantID, query),
		})
	}

	if res.Err != nil {
		return res, fmt.Errorf("run %s: %w", runID, res.Err)
	}
	return res, nil
}

func (r *Runner) record(res *Result, assistantID, query string) *storage.Run {
	run := &storage.Run{
		ID:          res.RunID,
		AssistantID: assistantID,
		Target:      r.config.Target,
		Query:       query,
		Output:      res.Output,
		Stats: storage.RunStats{
			Fragments:      res.Stats.Fragments,
			Bytes:          res.Stats.Bytes,
			Records:        res.Stats.Records,
			Deltas:         res.Stats.Deltas,
			Malformed:      res.Stats.Malformed,
			DiscardedBytes: res.Stats.DiscardedBytes,
		},
		StartedAt:   res.StartedAt,
		CompletedAt: res.CompletedAt,
	}
	if res.Err != nil {
		run.Error = res.Err.Error()
	}
	return run
}
