// Package configcmder provides the config command for managing persistent
// tabagent configuration stored in the .tabagent/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tabagent/pkg/cliui"
	"github.com/papercomputeco/tabagent/pkg/config"
)

const configLongDesc string = `Manage persistent tabagent configuration.

Configuration is stored as config.toml in the .tabagent/ directory and provides
default values for command flags. CLI flags and TABAGENT_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  agent.target, agent.assistant_id, agent.timeout,
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  output.markdown, mock.listen

Examples:
  tabagent config set agent.assistant_id 17909892-e2f4-479b-825e-d97f4120b62e
  tabagent config set storage.provider memory
  tabagent config get agent.target
  tabagent config list
  tabagent config preset experimental`

const configShortDesc string = "Manage persistent tabagent configuration"

// configCommander is shared by every config subcommand.
type configCommander struct {
	configDir string
	out       io.Writer
	cfger     *config.Configer
}

func NewConfigCmd() *cobra.Command {
	cmder := &configCommander{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.out = cmd.OutOrStdout()

			cfger, err := config.NewConfiger(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfger = cfger
			return nil
		},
	}

	cmd.AddCommand(newSetCmd(cmder))
	cmd.AddCommand(newGetCmd(cmder))
	cmd.AddCommand(newListCmd(cmder))
	cmd.AddCommand(newPresetCmd(cmder))

	return cmd
}

// printTarget tells the user which config file is read or written.
func (c *configCommander) printTarget() {
	if target := c.cfger.GetTarget(); target != "" {
		fmt.Fprintf(c.out, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}

func checkKey(key string) error {
	if config.IsValidConfigKey(key) {
		return nil
	}
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

// completeKey offers config keys for the first positional argument.
func completeKey(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// renderValue shows unset values dimmed.
func renderValue(value string) string {
	if value == "" {
		return cliui.DimStyle.Render("<not set>")
	}
	return cliui.ValueStyle.Render(value)
}
