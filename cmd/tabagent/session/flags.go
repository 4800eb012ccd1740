package session

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/tabagent/pkg/config"
)

// AgentFlags are the registry keys of every flag that shapes a run.
var AgentFlags = []string{
	config.FlagTarget,
	config.FlagAssistant,
	config.FlagTimeout,
	config.FlagStorageProvider,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagEventStream,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

// AddAgentFlags registers AgentFlags on cmd. Values are read back through
// ResolveConfig, not through the flag variables.
func AddAgentFlags(cmd *cobra.Command) {
	for _, key := range AgentFlags {
		config.AddStringFlag(cmd, config.Flags, key, new(string))
	}
}

// ResolveConfig layers flags, TABAGENT_* env, config.toml and defaults for
// the registry keys in flagKeys. Call it from PreRunE.
func ResolveConfig(cmd *cobra.Command, flagKeys []string) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)
	return config.FromViper(v), nil
}
