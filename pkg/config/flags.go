package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --target
// on both "tabagent ask" and "tabagent chat").
type Flag struct {
	// Name is the long flag name (e.g. "target").
	Name string

	// Shorthand is the one-letter short flag (e.g. "t"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "agent.target").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagTarget          = "target"
	FlagAssistant       = "assistant"
	FlagTimeout         = "timeout"
	FlagStorageProvider = "storage"
	FlagSQLite          = "sqlite"
	FlagPostgresDSN     = "postgres-dsn"
	FlagEventStream     = "eventstream"
	FlagKafkaBrokers    = "kafka-brokers"
	FlagKafkaTopic      = "kafka-topic"
	FlagMarkdown        = "markdown"
	FlagMockListen      = "listen"
)

// Flags is the registry of every config-backed flag.
var Flags = FlagSet{
	FlagTarget: {
		Name:        "target",
		Shorthand:   "t",
		ViperKey:    "agent.target",
		Description: "Agent server base URL",
	},
	FlagAssistant: {
		Name:        "assistant",
		Shorthand:   "a",
		ViperKey:    "agent.assistant_id",
		Description: "Assistant ID runs are sent to",
	},
	FlagTimeout: {
		Name:        "timeout",
		ViperKey:    "agent.timeout",
		Description: "Maximum duration of a single run (e.g. 90s, 5m)",
	},
	FlagStorageProvider: {
		Name:        "storage",
		ViperKey:    "storage.provider",
		Description: "Run storage provider (memory, sqlite, postgres)",
	},
	FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to SQLite database (default: .tabagent/tabagent.db)",
	},
	FlagPostgresDSN: {
		Name:        "postgres-dsn",
		ViperKey:    "storage.postgres_dsn",
		Description: "PostgreSQL connection string",
	},
	FlagEventStream: {
		Name:        "eventstream",
		ViperKey:    "eventstream.provider",
		Description: "Completed run event publisher (none, kafka)",
	},
	FlagKafkaBrokers: {
		Name:        "kafka-brokers",
		ViperKey:    "eventstream.brokers",
		Description: "Comma separated Kafka brokers",
	},
	FlagKafkaTopic: {
		Name:        "kafka-topic",
		ViperKey:    "eventstream.topic",
		Description: "Kafka topic completed runs are published to",
	},
	FlagMarkdown: {
		Name:        "markdown",
		ViperKey:    "output.markdown",
		Description: "Re-render the finished answer as markdown",
	},
	FlagMockListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "mock.listen",
		Description: "Address for the mock agent server to listen on",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
