package models

// Setting represents a key-value setting
type Setting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

// AppSettings represents the full application settings
type AppSettings struct {
	Server      ServerSettings      `json:"server"`
	Database    DatabaseSettings    `json:"database"`
	Definitions DefinitionsSettings `json:"definitions"`
	Aggregator  AggregatorSettings  `json:"aggregator"`
}

// ServerSettings represents server configuration
type ServerSettings struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	APIKey string `json:"api_key"`
}

// DatabaseSettings represents database configuration
type DatabaseSettings struct {
	Path string `json:"path"`
}

// DefinitionsSettings reports where indexer definitions are loaded from
// and which remote Torznab servers are being proxied.
type DefinitionsSettings struct {
	Directory    string   `json:"directory"`
	ProxiedCount int      `json:"proxied_count"`
	LoadedIDs    []string `json:"loaded_ids"`
}

// AggregatorSettings represents fan-out and cache configuration
type AggregatorSettings struct {
	MaxConcurrency int `json:"max_concurrency"`
	CacheTTLSecond int `json:"cache_ttl_seconds"`
	ResultLimit    int `json:"result_limit"`
}

// SetupStatus represents the setup wizard status
type SetupStatus struct {
	Completed        bool `json:"completed"`
	HasDefinitions   bool `json:"has_definitions"`
	HasProxiedSource bool `json:"has_proxied_source"`
}

// IndexerStatus summarizes the aggregator's currently loaded sources.
type IndexerStatus struct {
	NativeCount  int `json:"native_count"`
	ProxiedCount int `json:"proxied_count"`
}

// ActivityLog represents an activity log entry
type ActivityLog struct {
	ID        int64  `json:"id"`
	EventType string `json:"event_type"`
	Details   string `json:"details,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Activity event types
const (
	ActivitySearchRun      = "search_run"
	ActivityDownloadServed = "download_served"
	ActivityDefinitionLoad = "definition_loaded"
	ActivitySetupCompleted = "setup_completed"
	ActivityConfigImported = "config_imported"
)
