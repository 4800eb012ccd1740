package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tabagent/pkg/cliui"
	"github.com/papercomputeco/tabagent/pkg/config"
)

const presetLongDesc string = `Write a preset configuration.

Replaces config.toml with the named preset. Presets select which agent
graph runs are sent to:
  tableau        The Tableau chatbot graph (default)
  experimental   The experimental agent graph

Examples:
  tabagent config preset experimental`

func newPresetCmd(cmder *configCommander) *cobra.Command {
	return &cobra.Command{
		Use:       "preset <name>",
		Short:     "Write a preset configuration",
		Long:      presetLongDesc,
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.ValidPresetNames(),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.runPreset(args[0])
		},
	}
}

func (c *configCommander) runPreset(name string) error {
	cfg, err := config.PresetConfig(name)
	if err != nil {
		return err
	}

	if err := c.cfger.SaveConfig(cfg); err != nil {
		return err
	}

	c.printTarget()
	fmt.Fprintf(c.out, "  %s Applied preset %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(name),
		cliui.DimStyle.Render("(assistant "+cfg.Agent.AssistantID+")"),
	)
	return nil
}
