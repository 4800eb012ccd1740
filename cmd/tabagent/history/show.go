package historycmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tabagent/pkg/cliui"
	"github.com/papercomputeco/tabagent/pkg/storage"
)

const showLongDesc string = `Show a recorded run: the query, the full answer and stream statistics.

The run ID may be abbreviated to any unique prefix.

Examples:
  tabagent history show 3f2a9c1e`

const showShortDesc string = "Show a recorded run"

func newShowCmd(cmder *historyCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.runShow(cmd.Context(), args[0])
		},
	}

	return cmd
}

func (c *historyCommander) runShow(ctx context.Context, id string) error {
	return c.withDriver(ctx, func(driver storage.Driver) error {
		run, err := findRun(ctx, driver, id)
		if err != nil {
			return err
		}

		field := func(key, value string) {
			fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-10s", key)), value)
		}

		fmt.Fprintln(c.out)
		field("Run:", cliui.IDStyle.Render(run.ID))
		field("Assistant:", cliui.ValueStyle.Render(run.AssistantID))
		if run.Target != "" {
			field("Target:", cliui.ValueStyle.Render(run.Target))
		}
		field("Started:", cliui.DimStyle.Render(run.StartedAt.Local().Format("2006-01-02 15:04:05")))
		field("Duration:", cliui.DimStyle.Render(cliui.FormatDuration(run.Duration())))
		field("Status:", status(run))
		field("Stream:", cliui.DimStyle.Render(fmt.Sprintf(
			"%d records, %d deltas, %d malformed, %d bytes",
			run.Stats.Records, run.Stats.Deltas, run.Stats.Malformed, run.Stats.Bytes,
		)))

		fmt.Fprintf(c.out, "\n  %s\n%s\n", cliui.KeyStyle.Render("Query"), indent(run.Query))
		fmt.Fprintf(c.out, "\n  %s\n%s\n", cliui.KeyStyle.Render("Answer"), indent(run.Output))
		if run.Failed() {
			fmt.Fprintf(c.out, "\n  %s\n", cliui.ErrorStyle.Render("Error: "+run.Error))
		}
		fmt.Fprintln(c.out)
		return nil
	})
}

func indent(s string) string {
	if s == "" {
		return "    " + cliui.DimStyle.Render("<empty>")
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
