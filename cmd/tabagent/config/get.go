package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tabagent/pkg/cliui"
)

const getLongDesc string = `Get a configuration value.

Prints the value stored for key in config.toml, or <not set>.

Examples:
  tabagent config get agent.target
  tabagent config get storage.provider`

func newGetCmd(cmder *configCommander) *cobra.Command {
	return &cobra.Command{
		Use:               "get <key>",
		Short:             "Get a configuration value",
		Long:              getLongDesc,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKey,
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.runGet(args[0])
		},
	}
}

func (c *configCommander) runGet(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	value, err := c.cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	c.printTarget()
	fmt.Fprintf(c.out, "  %s  %s\n\n", cliui.KeyStyle.Render(key), renderValue(value))
	return nil
}
