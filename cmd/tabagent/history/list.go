package historycmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tabagent/pkg/cliui"
	"github.com/papercomputeco/tabagent/pkg/storage"
)

const listLongDesc string = `List recorded runs, newest first.

Examples:
  tabagent history list
  tabagent history list --limit 50`

const listShortDesc string = "List recorded runs"

func newListCmd(cmder *historyCommander) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.runList(cmd.Context(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")

	return cmd
}

func (c *historyCommander) runList(ctx context.Context, limit int) error {
	return c.withDriver(ctx, func(driver storage.Driver) error {
		runs, err := driver.List(ctx, limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("No runs recorded yet."))
			return nil
		}

		fmt.Fprintln(c.out)
		for _, run := range runs {
			fmt.Fprintln(c.out, formatRunLine(run))
		}
		fmt.Fprintln(c.out)
		return nil
	})
}
