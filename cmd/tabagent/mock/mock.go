// Package mockcmder provides the mock command, which runs a fake agent server
// that streams canned answers in the LangGraph wire format.
package mockcmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/tabagent/mock"
	"github.com/papercomputeco/tabagent/pkg/config"
	"github.com/papercomputeco/tabagent/pkg/logger"
)

type mockCommander struct {
	listen    string
	delay     time.Duration
	chunkSize int
	malformed bool
	debug     bool

	logger *zap.Logger
}

var mockFlags = []string{
	config.FlagMockListen,
}

const mockLongDesc string = `Run a mock LangGraph agent server.

The server accepts POST /runs/stream like a real agent server and answers
every query with "You asked: <query>", streamed word by word as values
events. Use it to try tabagent without a running agent graph, or to test
how clients cope with slow, fragmented or corrupted streams.

Examples:
  tabagent mock
  tabagent mock --listen 127.0.0.1:9000 --delay 200ms
  tabagent mock --chunk-size 3 --malformed

Then, in another terminal:
  tabagent ask --target http://127.0.0.1:2024 "hello"`

const mockShortDesc string = "Run a mock agent server"

func NewMockCmd() *cobra.Command {
	cmder := &mockCommander{}

	cmd := &cobra.Command{
		Use:   "mock",
		Short: mockShortDesc,
		Long:  mockLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, mockFlags)
			cmder.listen = v.GetString("mock.listen")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			if cmder.chunkSize < 0 {
				return fmt.Errorf("invalid chunk size %d: must not be negative", cmder.chunkSize)
			}

			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagMockListen, new(string))
	cmd.Flags().DurationVar(&cmder.delay, "delay", 50*time.Millisecond, "Delay between streamed events")
	cmd.Flags().IntVar(&cmder.chunkSize, "chunk-size", 0, "Split every event into writes of at most this many bytes (0 writes whole events)")
	cmd.Flags().BoolVar(&cmder.malformed, "malformed", false, "Emit one unparseable record after the first delta")

	return cmd
}

func (c *mockCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewServerLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	server := mock.NewServer(mock.Config{
		ListenAddr:      c.listen,
		Delay:           c.delay,
		ChunkSize:       c.chunkSize,
		InjectMalformed: c.malformed,
	}, c.logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Mock agent server listening on http://%s\n", c.listen)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.logger.Info("shutting down mock agent server")
		if err := server.Shutdown(); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shutting down mock server: %w", err)
		}
		return nil
	}
}
