package config

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"

	EventStreamNone  = "none"
	EventStreamKafka = "kafka"
)

const (
	defaultAgentTarget = "http://127.0.0.1:2024"
	defaultTimeout     = "5m"

	// tableauAssistantID is the Tableau chatbot graph served by the local
	// LangGraph dev server.
	tableauAssistantID = "de12d806-a939-4a20-93e2-e6724ba6df29"

	// experimentalAssistantID is the experimental agent graph.
	experimentalAssistantID = "17909892-e2f4-479b-825e-d97f4120b62e"

	defaultStorageProvider = StorageSQLite

	defaultEventStreamProvider = EventStreamNone
	defaultEventStreamTopic    = "tabagent.runs"

	defaultMockListen = "127.0.0.1:2024"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Agent: AgentConfig{
			Target:      defaultAgentTarget,
			AssistantID: tableauAssistantID,
			Timeout:     defaultTimeout,
		},
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
		Mock: MockConfig{
			Listen: defaultMockListen,
		},
	}
}
