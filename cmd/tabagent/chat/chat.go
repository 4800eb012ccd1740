// Package chatcmder provides the chat command for an interactive session
// with the agent.
package chatcmder

import (
	"bufio"
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
	"github.com/papercomputeco/tabagent/pkg/utils"
	"github.com/papercomputeco/tabagent/runner"
)

type chatCommander struct {
	debug     bool
	configDir string
	noRecord  bool

	cfg *config.Config

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	logger *zap.Logger
}

const chatLongDesc string = `Start an interactive chat session with the agent.

Each message is sent as its own run and the answer is streamed back as it
arrives. A failed run shows the partial answer and the error, and the
session carries on with the next message.

Type /exit or press Ctrl+D to quit. Ctrl+C cancels the answer in progress.

Examples:
  tabagent chat
  tabagent chat --target http://127.0.0.1:2024 --assistant my-graph`

const chatShortDesc string = "Interactive chat with the agent"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := session.ResolveConfig(cmd, session.AgentFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			cmder.stdin = cmd.InOrStdin()
			cmder.stdout = cmd.OutOrStdout()
			cmder.stderr = cmd.ErrOrStderr()

			return cmder.run(cmd.Context())
		},
	}

	session.AddAgentFlags(cmd)
	cmd.Flags().BoolVar(&cmder.noRecord, "no-record", false, "Do not record runs from this session")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}

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

	fmt.Fprintln(c.stdout)
	fmt.Fprintf(c.stdout, "  %s %s\n",
		cliui.KeyStyle.Render("Agent:"),
		cliui.NameStyle.Render(c.cfg.Agent.Target),
	)
	fmt.Fprintf(c.stdout, "  %s %s\n\n",
		cliui.KeyStyle.Render("Assistant:"),
		cliui.IDStyle.Render(utils.Truncate(c.cfg.Agent.AssistantID, 36)),
	)
	fmt.Fprintf(c.stdout, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(c.stdout, cliui.UserPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		c.turn(ctx, sess.Runner, input)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.stdout)
	return nil
}

// turn runs a single message. Failures are shown inline and never end the
// session; Ctrl+C only cancels the current answer.
func (c *chatCommander) turn(ctx context.Context, r *runner.Runner, input string) {
	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprint(c.stdout, cliui.AgentPrompt)

	res, err := r.Run(turnCtx, runner.RunInput{Query: input}, agentstream.NewWriterSink(c.stdout))
	switch {
	case err == nil:
		if !strings.HasSuffix(res.Output, "\n") {
			fmt.Fprintln(c.stdout)
		}
	case agentstream.IsTerminal(err):
		// Already printed by the sink.
	case errors.Is(err, runner.ErrEmptyQuery):
		fmt.Fprintln(c.stdout)
	default:
		fmt.Fprintf(c.stderr, "  %s %v\n", cliui.FailMark, err)
	}

	c.logger.Debug("turn finished", zap.Bool("failed", err != nil))
	fmt.Fprintln(c.stdout)
}
