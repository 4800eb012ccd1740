package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tabagent/pkg/cliui"
)

const setLongDesc string = `Set a configuration value.

Validates value for key and writes it to config.toml, creating the file
when needed.

Examples:
  tabagent config set agent.target http://127.0.0.1:2024
  tabagent config set agent.timeout 90s
  tabagent config set eventstream.provider kafka
  tabagent config set eventstream.brokers localhost:9092`

func newSetCmd(cmder *configCommander) *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             "Set a configuration value",
		Long:              setLongDesc,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKey,
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.runSet(args[0], args[1])
		},
	}
}

func (c *configCommander) runSet(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	if err := c.cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	c.printTarget()
	fmt.Fprintf(c.out, "  %s %s = %s\n\n", cliui.SuccessMark, cliui.KeyStyle.Render(key), renderValue(value))
	return nil
}
