package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Server   ServerConfig   `mapstructure:"server"`
	Mock     MockConfig     `mapstructure:"mock"`
	WS       WSConfig       `mapstructure:"ws"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type UpstreamConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	TimeoutSec    int    `mapstructure:"timeout_sec"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryDelaySec int    `mapstructure:"retry_delay_sec"`
	RatePerSecond int    `mapstructure:"rate_per_second"`
}

type ServerConfig struct {
	Port            string `mapstructure:"port"`
	ReadTimeoutSec  int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_sec"`
}

type MockConfig struct {
	Seed int64 `mapstructure:"seed"`
}

type WSConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	StreamInterval string `mapstructure:"stream_interval"`
}

type SnapshotConfig struct {
	Directory string `mapstructure:"directory"`
	Workers   int    `mapstructure:"workers"`
	Compress  bool   `mapstructure:"compress"`
}

type LoggingConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
	Level     string `mapstructure:"level"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("upstream.base_url", "https://api.unusualwhales.com/api")
	v.SetDefault("upstream.timeout_sec", 8)
	v.SetDefault("upstream.retry_count", 3)
	v.SetDefault("upstream.retry_delay_sec", 1)
	v.SetDefault("upstream.rate_per_second", 5)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout_sec", 15)
	v.SetDefault("server.write_timeout_sec", 30)
	v.SetDefault("mock.seed", 42)
	v.SetDefault("ws.enabled", false)
	v.SetDefault("ws.stream_interval", "1s")
	v.SetDefault("snapshot.directory", "snapshots")
	v.SetDefault("snapshot.workers", 3)
	v.SetDefault("snapshot.compress", true)
	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")

	// Environment variable support
	v.SetEnvPrefix("WHALEBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Explicitly bind nested keys to env vars
	_ = v.BindEnv("upstream.api_key", "WHALEBOARD_API_KEY")

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("default")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks ranges and enumerations. A missing API key is valid: the
// server then serves synthetic data only.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Upstream.TimeoutSec < 1 {
		return fmt.Errorf("upstream timeout_sec must be >= 1")
	}
	if c.Upstream.RetryCount < 0 {
		return fmt.Errorf("upstream retry_count must be >= 0")
	}
	if c.Upstream.RatePerSecond < 1 {
		return fmt.Errorf("upstream rate_per_second must be >= 1")
	}
	if c.Snapshot.Workers < 1 {
		return fmt.Errorf("snapshot workers must be >= 1")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	if _, err := time.ParseDuration(c.WS.StreamInterval); err != nil {
		return fmt.Errorf("invalid ws stream_interval: %w", err)
	}
	return nil
}

// Interval returns the parsed websocket broadcast interval. Validate
// guarantees the string parses.
func (c *WSConfig) Interval() time.Duration {
	d, _ := time.ParseDuration(c.StreamInterval)
	return d
}
