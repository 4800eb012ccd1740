package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent tabagent configuration stored as
// config.toml in the .tabagent/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Agent       AgentConfig       `toml:"agent"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Output      OutputConfig      `toml:"output"`
	Mock        MockConfig        `toml:"mock"`
}

// AgentConfig holds the agent server connection settings.
type AgentConfig struct {
	// Target is the base URL of the agent server (scheme + host + port).
	Target string `toml:"target,omitempty"`

	// AssistantID identifies the assistant (graph) runs are sent to.
	AssistantID string `toml:"assistant_id,omitempty"`

	// Timeout bounds a whole run, as a Go duration string (e.g. "5m").
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout. An empty Timeout means no limit.
func (a AgentConfig) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid agent timeout %q: %w", a.Timeout, err)
	}
	return d, nil
}

// StorageConfig holds run recording settings.
type StorageConfig struct {
	// Provider is one of "memory", "sqlite" or "postgres".
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventStreamConfig holds settings for publishing completed runs.
type EventStreamConfig struct {
	// Provider is one of "none" or "kafka".
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma separated list of host:port Kafka brokers.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// BrokerList splits Brokers into its trimmed, non-empty entries.
func (e EventStreamConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(e.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// OutputConfig holds terminal output settings.
type OutputConfig struct {
	// Markdown re-renders the finished answer as markdown on a terminal.
	Markdown bool `toml:"markdown,omitempty"`
}

// MockConfig holds settings for the local mock agent server.
type MockConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"agent.target": {
		get: func(c *Config) string { return c.Agent.Target },
		set: func(c *Config, v string) error { c.Agent.Target = v; return nil },
	},
	"agent.assistant_id": {
		get: func(c *Config) string { return c.Agent.AssistantID },
		set: func(c *Config, v string) error { c.Agent.AssistantID = v; return nil },
	},
	"agent.timeout": {
		get: func(c *Config) string { return c.Agent.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for agent.timeout: %w", err)
			}
			c.Agent.Timeout = v
			return nil
		},
	},
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case StorageMemory, StorageSQLite, StoragePostgres:
				c.Storage.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for storage.provider: %q (available: memory, sqlite, postgres)", v)
			}
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case EventStreamNone, EventStreamKafka:
				c.EventStream.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for eventstream.provider: %q (available: none, kafka)", v)
			}
		},
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return c.EventStream.Brokers },
		set: func(c *Config, v string) error { c.EventStream.Brokers = v; return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"output.markdown": {
		get: func(c *Config) string { return strconv.FormatBool(c.Output.Markdown) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for output.markdown: %w", err)
			}
			c.Output.Markdown = b
			return nil
		},
	},
	"mock.listen": {
		get: func(c *Config) string { return c.Mock.Listen },
		set: func(c *Config, v string) error { c.Mock.Listen = v; return nil },
	},
}
