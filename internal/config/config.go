package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Definitions DefinitionsConfig `mapstructure:"definitions"`
	HTTPClient  HTTPClientConfig  `mapstructure:"http_client"`
	Aggregator  AggregatorConfig  `mapstructure:"aggregator"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DefinitionsConfig points at the directory holding Cardigann-style YAML
// indexer definitions, and lists any remote Torznab servers to proxy.
type DefinitionsConfig struct {
	Directory string           `mapstructure:"directory"`
	Proxied   []ProxiedIndexer `mapstructure:"proxied"`
}

type ProxiedIndexer struct {
	ID      string `mapstructure:"id" json:"id"`
	Name    string `mapstructure:"name" json:"name"`
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	APIKey  string `mapstructure:"api_key" json:"api_key"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

// HTTPClientConfig controls the outbound client every executor builds.
type HTTPClientConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	ProxyURL       string `mapstructure:"proxy_url"`
}

// AggregatorConfig bounds fan-out concurrency and result-cache lifetime.
type AggregatorConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"`
	CacheTTLSecond int `mapstructure:"cache_ttl_seconds"`
	ResultLimit    int `mapstructure:"result_limit"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var cfg *Config

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/lodestarr")
	viper.AddConfigPath("$HOME/.lodestarr")

	// Set defaults
	setDefaults()

	// Environment variable overrides
	viper.SetEnvPrefix("LODESTARR")
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Info().Msg("No config file found, using defaults")
			if err := createDefaultConfig(); err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Generate API key if not set
	if cfg.Server.APIKey == "" {
		cfg.Server.APIKey = generateAPIKey()
		viper.Set("server.api_key", cfg.Server.APIKey)
		if err := viper.WriteConfig(); err != nil {
			log.Warn().Err(err).Msg("Could not save generated API key to config")
		}
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		log.Fatal().Msg("Config not loaded")
	}
	return cfg
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 9999)
	viper.SetDefault("server.api_key", "")

	// Database defaults
	viper.SetDefault("database.path", "./data/lodestarr.db")

	// Definitions defaults
	viper.SetDefault("definitions.directory", "./definitions")
	viper.SetDefault("definitions.proxied", []ProxiedIndexer{})

	// HTTP client defaults
	viper.SetDefault("http_client.timeout_seconds", 30)
	viper.SetDefault("http_client.user_agent", "")
	viper.SetDefault("http_client.proxy_url", "")

	// Aggregator defaults
	viper.SetDefault("aggregator.max_concurrency", 4)
	viper.SetDefault("aggregator.cache_ttl_seconds", 3600)
	viper.SetDefault("aggregator.result_limit", 100)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
}

func createDefaultConfig() error {
	configPath := "./config.yaml"

	// Ensure parent directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Write default config
	return viper.SafeWriteConfigAs(configPath)
}

func generateAPIKey() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate API key")
	}
	return hex.EncodeToString(bytes)
}

// Save writes the current configuration to the config file
func Save() error {
	return viper.WriteConfig()
}

// Update updates a configuration value and saves
func Update(key string, value interface{}) error {
	viper.Set(key, value)
	if err := Save(); err != nil {
		return err
	}
	// Reload the in-memory config to reflect the change
	return viper.Unmarshal(cfg)
}

// SetupCompletedChecker is set by the database package to avoid a
// circular import, and reports whether the setup wizard has run.
var SetupCompletedChecker func() bool

// IsSetupCompleted returns true if the setup wizard has been completed
func IsSetupCompleted() bool {
	if SetupCompletedChecker != nil {
		return SetupCompletedChecker()
	}
	return false
}
