package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tabagent/pkg/cliui"
	"github.com/papercomputeco/tabagent/pkg/config"
)

const listLongDesc string = `List all configuration values.

Prints every key in TOML section order with its value from config.toml.
Values left at their defaults are shown as <not set>.

Examples:
  tabagent config list`

func newListCmd(cmder *configCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.runList()
		},
	}
}

func (c *configCommander) runList() error {
	keys := config.ValidConfigKeys()

	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}

	c.printTarget()
	for _, key := range keys {
		value, err := c.cfger.GetConfigValue(key)
		if err != nil {
			return err
		}
		if value != "" {
			value = fmt.Sprintf("%q", value)
		}
		fmt.Fprintf(c.out, "  %s  %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-*s", width, key)), renderValue(value))
	}
	fmt.Fprintln(c.out)

	return nil
}
