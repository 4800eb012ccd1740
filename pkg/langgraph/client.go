// Package langgraph is a minimal client for the LangGraph agent server's
// streaming run API.
package langgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTarget is the address of a local LangGraph dev server.
	DefaultTarget = "http://127.0.0.1:2024"

	streamPath   = "/runs/stream"
	maxErrorBody = 4 << 10
)

// Config holds configuration for the agent server client.
type Config struct {
	// Target is the agent server base URL. Defaults to DefaultTarget if empty.
	Target string

	// Timeout bounds a whole run including reading the stream.
	// Zero means no limit. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client

	Logger *zap.Logger
}

// Client opens streaming runs against an agent server.
type Client struct {
	target     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	target := cfg.Target
	if target == "" {
		target = DefaultTarget
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parsing agent target %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("agent target %q must use http or https", target)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("agent target %q has no host", target)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		target:     strings.TrimRight(target, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Target returns the normalized agent server base URL.
func (c *Client) Target() string {
	return c.target
}

// StreamRun starts a run and returns the raw event-stream body. The caller
// owns the returned body and must close it.
func (c *Client) StreamRun(ctx context.Context, req *RunRequest) (io.ReadCloser, error) {
	if req == nil || req.AssistantID == "" {
		return nil, ErrMissingAssistantID
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling run request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target+streamPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating run request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	c.logger.Debug("starting run",
		zap.String("target", c.target),
		zap.String("assistant_id", req.AssistantID),
		zap.Int("messages", len(req.Input.Messages)),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending run request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	c.logger.Debug("run stream opened",
		zap.Int("status", resp.StatusCode),
		zap.String("content_type", resp.Header.Get("Content-Type")),
	)

	return resp.Body, nil
}
