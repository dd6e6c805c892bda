// Package config handles configuration loading, validation, and management for stenod.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"stenod/internal/bus"
	"stenod/internal/logging"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete stenod configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Tape configuration for the stroke history database.
	Tape TapeConfig `toml:"tape" json:"tape" yaml:"tape"`

	// Bus configuration for publishing strokes over Redis.
	Bus BusConfig `toml:"bus" json:"bus" yaml:"bus"`

	// Chord configuration for stroke and outline assembly.
	Chord ChordConfig `toml:"chord" json:"chord" yaml:"chord"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level" env:"STENOD_LOG_LEVEL"`

	// Format is "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format" env:"STENOD_LOG_FORMAT"`

	// Output is "stdout", "stderr", "file", or "both".
	Output string `toml:"output" json:"output" yaml:"output" env:"STENOD_LOG_OUTPUT"`

	// FilePath is the log file used when Output includes a file.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path" env:"STENOD_LOG_PATH"`

	// MaxSizeMB is the log file size that triggers rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb" env:"STENOD_LOG_MAX_SIZE_MB"`

	// MaxBackups is how many rotated log files are kept.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups" env:"STENOD_LOG_MAX_BACKUPS"`

	// AddSource adds source file and line to log entries.
	AddSource bool `toml:"add_source" json:"add_source" yaml:"add_source" env:"STENOD_LOG_SOURCE"`
}

// TapeConfig holds stroke history configuration.
type TapeConfig struct {
	// Enabled determines whether finished strokes are recorded.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled" env:"STENOD_TAPE_ENABLED"`

	// Path is the SQLite database file.
	Path string `toml:"path" json:"path" yaml:"path" env:"STENOD_TAPE_PATH"`
}

// BusConfig holds Redis publishing configuration.
type BusConfig struct {
	// Enabled determines whether finished strokes are published.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled" env:"STENOD_BUS_ENABLED"`

	// Addr is the Redis host:port.
	Addr string `toml:"addr" json:"addr" yaml:"addr" env:"STENOD_BUS_ADDR"`

	// Password is the Redis password, if any.
	Password string `toml:"password" json:"password" yaml:"password" env:"STENOD_BUS_PASSWORD"`

	// DB is the Redis database number.
	DB int `toml:"db" json:"db" yaml:"db" env:"STENOD_BUS_DB"`

	// Channel is the pub/sub channel name.
	Channel string `toml:"channel" json:"channel" yaml:"channel" env:"STENOD_BUS_CHANNEL"`

	// TimeoutMs bounds each publish.
	TimeoutMs int `toml:"timeout_ms" json:"timeout_ms" yaml:"timeout_ms" env:"STENOD_BUS_TIMEOUT_MS"`
}

// ChordConfig holds stroke assembly configuration.
type ChordConfig struct {
	// OutlineWindow is how many recent strokes the rolling outline keeps.
	OutlineWindow int `toml:"outline_window" json:"outline_window" yaml:"outline_window" env:"STENOD_OUTLINE_WINDOW"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dir := StenodDir()

	return &Config{
		Version: Version,
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   filepath.Join(dir, "stenod.log"),
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
		Tape: TapeConfig{
			Enabled: true,
			Path:    filepath.Join(dir, "tape.db"),
		},
		Bus: BusConfig{
			Enabled:   false,
			Addr:      "localhost:6379",
			Channel:   bus.DefaultChannel,
			TimeoutMs: 500,
		},
		Chord: ChordConfig{
			OutlineWindow: 10,
		},
	}
}

// StenodDir returns the base stenod directory.
// Uses platform-specific paths or the STENOD_DATA_DIR environment override.
func StenodDir() string {
	if envDir := os.Getenv("STENOD_DATA_DIR"); envDir != "" {
		return envDir
	}
	return PlatformDataDir()
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(StenodDir(), "config.toml")
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfigFromFile reads and parses a config file based on its extension.
func loadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		// Try TOML by default
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode config (unknown format): %w", err)
		}
	}

	return cfg, nil
}

// ApplyEnvOverrides applies STENOD_* environment variables on top of the
// current values. Unset variables leave fields untouched.
func (c *Config) ApplyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// EnsureDirectories creates the directories the configured files live in.
func (c *Config) EnsureDirectories() error {
	var dirs []string
	if c.Tape.Enabled {
		dirs = append(dirs, filepath.Dir(c.Tape.Path))
	}
	if c.Logging.Output == "file" || c.Logging.Output == "both" {
		dirs = append(dirs, filepath.Dir(c.Logging.FilePath))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// LoggerConfig converts the logging section for logging.New.
func (l LoggingConfig) LoggerConfig(component string) (*logging.Config, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(l.Format)
	if err != nil {
		return nil, err
	}

	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Format = format
	cfg.Output = l.Output
	cfg.FilePath = l.FilePath
	cfg.MaxBytes = int64(l.MaxSizeMB) << 20
	cfg.MaxBackups = l.MaxBackups
	cfg.AddSource = l.AddSource
	cfg.Component = component
	return cfg, nil
}
