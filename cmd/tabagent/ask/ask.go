// Package askcmder provides the ask command: one query, one streamed answer.
package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/tabagent/cmd/tabagent/session"
	"github.com/papercomputeco/tabagent/pkg/agentstream"
	"github.com/papercomputeco/tabagent/pkg/cliui"
	"github.com/papercomputeco/tabagent/pkg/config"
	"github.com/papercomputeco/tabagent/pkg/logger"
	"github.com/papercomputeco/tabagent/runner"
)

type askCommander struct {
	debug     bool
	configDir string
	dump      string
	noRecord  bool
	markdown  bool

	cfg *config.Config

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	logger *zap.Logger
}

const askLongDesc string = `Send a single query to the agent and stream the answer.

The query is taken from the arguments, or read from stdin when no arguments
are given. The answer is printed as it arrives; if the stream fails midway,
the partial answer stays on screen followed by an "Error:" line.

Every run is recorded (see "tabagent history") unless --no-record is set.

Examples:
  tabagent ask "Which region had the highest sales last quarter?"
  echo "Top 5 products by profit" | tabagent ask
  tabagent ask --assistant 17909892-e2f4-479b-825e-d97f4120b62e "hello"
  tabagent ask --markdown --dump run.sse "Summarize the dashboard"`

const askShortDesc string = "Ask the agent a single question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [query...]",
		Short: askShortDesc,
		Long:  askLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := session.ResolveConfig(cmd, append([]string{config.FlagMarkdown}, session.AgentFlags...))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg
			cmder.markdown = cfg.Output.Markdown
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			cmder.stdin = cmd.InOrStdin()
			cmder.stdout = cmd.OutOrStdout()
			cmder.stderr = cmd.ErrOrStderr()

			return cmder.run(cmd.Context(), args)
		},
	}

	session.AddAgentFlags(cmd)
	config.AddBoolFlag(cmd, config.Flags, config.FlagMarkdown, new(bool))
	cmd.Flags().StringVar(&cmder.dump, "dump", "", "Write the raw event stream to this file")
	cmd.Flags().BoolVar(&cmder.noRecord, "no-record", false, "Do not record this run")

	return cmd
}

func (c *askCommander) run(ctx context.Context, args []string) error {
	query, err := c.readQuery(args)
	if err != nil {
		return err
	}

	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sess, err := session.Open(ctx, c.cfg, c.logger, session.Options{
		ConfigDir: c.configDir,
		NoRecord:  c.noRecord,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			c.logger.Warn("closing session", zap.Error(err))
		}
	}()

	in := runner.RunInput{Query: query}
	if c.dump != "" {
		f, err := os.Create(c.dump)
		if err != nil {
			return fmt.Errorf("creating dump file: %w", err)
		}
		defer f.Close()
		in.Tee = f
	}

	if c.markdown && cliui.IsTerminal(c.stdout) {
		return c.runMarkdown(ctx, sess.Runner, in)
	}
	return c.runStreaming(ctx, sess.Runner, in)
}

// runStreaming prints deltas as they arrive.
func (c *askCommander) runStreaming(ctx context.Context, r *runner.Runner, in runner.RunInput) error {
	out := agentstream.NewWriterSink(c.stdout)
	var sink agentstream.Sink = out

	if cliui.IsTerminal(c.stderr) {
		thinking := cliui.NewThinking(c.stderr)
		sink = agentstream.SinkFuncs{
			Delta: func(text string) {
				thinking.Clear()
				out.OnDelta(text)
			},
			Error: func(err error) {
				if agentstream.IsTerminal(err) {
					thinking.Clear()
				}
				out.OnError(err)
			},
		}
		defer thinking.Clear()
	}

	res, err := r.Run(ctx, in, sink)
	if res != nil && res.Err == nil && res.Output != "" && !strings.HasSuffix(res.Output, "\n") {
		fmt.Fprintln(c.stdout)
	}
	return err
}

// runMarkdown waits for the whole answer behind a spinner, then renders it.
func (c *askCommander) runMarkdown(ctx context.Context, r *runner.Runner, in runner.RunInput) error {
	acc := agentstream.NewAccumulator()

	var res *runner.Result
	err := cliui.Step(c.stderr, "Thinking", func() error {
		var runErr error
		res, runErr = r.Run(ctx, in, acc)
		return runErr
	})
	if err != nil {
		// Show what arrived, then the failure, same as streaming mode.
		out := agentstream.NewWriterSink(c.stdout)
		out.OnDelta(acc.Text())
		if terminal := acc.Terminal(); terminal != nil {
			out.OnError(terminal)
		}
		return err
	}

	rendered, rerr := cliui.RenderMarkdown(res.Output)
	if rerr != nil {
		c.logger.Debug("markdown rendering failed", zap.Error(rerr))
	}
	fmt.Fprint(c.stdout, rendered)
	return nil
}

// readQuery joins args, or reads stdin when there are none.
func (c *askCommander) readQuery(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if f, ok := c.stdin.(*os.File); ok && cliui.IsTerminal(f) {
		return "", errors.New("no query given: pass it as arguments or pipe it on stdin")
	}

	data, err := io.ReadAll(c.stdin)
	if err != nil {
		return "", fmt.Errorf("reading query from stdin: %w", err)
	}

	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", runner.ErrEmptyQuery
	}
	return query, nil
}
