// Package historycmder provides commands for browsing recorded runs.
package historycmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/tabagent/cmd/tabagent/session"
	"github.com/papercomputeco/tabagent/pkg/cliui"
	"github.com/papercomputeco/tabagent/pkg/config"
	"github.com/papercomputeco/tabagent/pkg/logger"
	"github.com/papercomputeco/tabagent/pkg/storage"
	"github.com/papercomputeco/tabagent/pkg/utils"
)

// storageFlags are the registry keys that select the run store.
var storageFlags = []string{
	config.FlagStorageProvider,
	config.FlagSQLite,
	config.FlagPostgresDSN,
}

const historyLongDesc string = `Browse runs recorded by "tabagent ask" and "tabagent chat".

Runs are read from the configured storage provider (SQLite by default).

Examples:
  tabagent history list
  tabagent history list --limit 5
  tabagent history show 3f2a9c`

const historyShortDesc string = "Browse recorded runs"

type historyCommander struct {
	debug     bool
	configDir string
	cfg       *config.Config
	out       io.Writer
	logger    *zap.Logger
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := session.ResolveConfig(cmd, storageFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.out = cmd.OutOrStdout()
			return nil
		},
	}

	for _, key := range storageFlags {
		def := config.Flags[key]
		if def.Shorthand != "" {
			cmd.PersistentFlags().StringP(def.Name, def.Shorthand, "", def.Description)
		} else {
			cmd.PersistentFlags().String(def.Name, "", def.Description)
		}
	}

	cmd.AddCommand(newListCmd(cmder))
	cmd.AddCommand(newShowCmd(cmder))

	return cmd
}

// withDriver opens the configured store for the duration of fn.
func (c *historyCommander) withDriver(ctx context.Context, fn func(storage.Driver) error) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}

	driver, err := session.NewStorageDriver(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	return fn(driver)
}

// findRun resolves id exactly, then as a unique prefix of a recorded ID.
func findRun(ctx context.Context, driver storage.Driver, id string) (*storage.Run, error) {
	run, err := driver.Get(ctx, id)
	if err == nil {
		return run, nil
	}

	var notFound storage.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	runs, err := driver.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	var matches []*storage.Run
	for _, r := range runs {
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return nil, notFound
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous (%d matches)", id, len(matches))
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func status(run *storage.Run) string {
	if run.Failed() {
		return cliui.FailMark
	}
	return cliui.SuccessMark
}

// formatRunLine renders one row of "history list".
func formatRunLine(run *storage.Run) string {
	return fmt.Sprintf("  %s %s  %s  %s  %s",
		status(run),
		cliui.IDStyle.Render(shortID(run.ID)),
		cliui.DimStyle.Render(run.StartedAt.Local().Format("2006-01-02 15:04:05")),
		cliui.DimStyle.Render(fmt.Sprintf("%7s", cliui.FormatDuration(run.Duration()))),
		utils.Truncate(utils.OneLine(run.Query), 60),
	)
}
