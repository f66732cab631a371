// Package config loads the runtime configuration. All knobs come from one
// YAML file passed explicitly to the entry points; there is no implicit
// process-wide state.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full runtime configuration.
type Config struct {
	// DataDir is the snapshot store directory.
	DataDir string `yaml:"data_dir"`

	API     APIConfig     `yaml:"api"`
	Server  ServerConfig  `yaml:"server"`
	Archive ArchiveConfig `yaml:"archive"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig configures the marketplace ingestion client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`

	// BearerToken and Cookie come from the external login flow.
	BearerToken string `yaml:"bearer_token"`
	Cookie      string `yaml:"cookie"`

	// RateLimitRPS caps outgoing requests per second; Burst is the limiter
	// bucket size.
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
	Burst        int     `yaml:"burst"`

	Timeout Duration `yaml:"timeout"`
}

// ServerConfig configures the trigger HTTP server.
type ServerConfig struct {
	ListenAddr   string   `yaml:"listen_addr"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// ArchiveConfig configures the optional persistence backends. Empty DSNs
// disable the corresponding backend.
type ArchiveConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `yaml:"level"`

	// Pretty switches to human-readable console output.
	Pretty bool `yaml:"pretty"`
}

// Default returns the configuration defaults applied before file values.
func Default() Config {
	return Config{
		DataDir: "data",
		API: APIConfig{
			RateLimitRPS: 2,
			Burst:        4,
			Timeout:      Duration(30 * time.Second),
		},
		Server: ServerConfig{
			ListenAddr:   ":8080",
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(10 * time.Minute),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML config file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks invariants the rest of the program assumes.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.API.RateLimitRPS <= 0 {
		return fmt.Errorf("api.rate_limit_rps must be positive, got %v", c.API.RateLimitRPS)
	}
	if c.API.Burst <= 0 {
		return fmt.Errorf("api.burst must be positive, got %d", c.API.Burst)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %v", c.API.Timeout)
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	return nil
}
