package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Constants
const (
	EnvPrefix         = "SCHEDULER_"
	DefaultConfigFile = "scheduler.yaml"
	maxConfigFileSize = 1024 * 1024 // 1MB

	// Error messages
	ErrEmptyTask          = "Please enter your scheduling needs."
	ErrInvalidFormat      = "Invalid format"
	ErrInvalidRequestBody = "Invalid request body"
	ErrFailedToRender     = "Failed to render schedule"
	ErrTooManyRequests    = "Too many schedule requests, try again in a minute"

	// Export formats
	FormatPDF  = "pdf"
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatICS  = "ics"

	// ICS constants
	ICSProductID = "-//Winterberg//AI Scheduler//EN"
)

// Formats lists the export formats in the order the UI offers them
var Formats = []string{FormatPDF, FormatCSV, FormatJSON, FormatICS}

// Embedded files (set by main)
var IndexHTML []byte

// Config is the complete runtime configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Generator GeneratorConfig `koanf:"generator"`
	Limits    LimitsConfig    `koanf:"limits"`
	Log       LogConfig       `koanf:"log"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// GeneratorConfig points at an OpenAI-compatible chat completion endpoint
type GeneratorConfig struct {
	BaseURL   string `koanf:"base_url"`
	Model     string `koanf:"model"`
	APIKey    string `koanf:"api_key"`
	MaxTokens int    `koanf:"max_tokens"`
}

// LimitsConfig bounds how often a single client may trigger a generation
type LimitsConfig struct {
	RequestsPerMinute float64 `koanf:"requests_per_minute"`
	Burst             int     `koanf:"burst"`
}

// LogConfig selects level and encoder for the zap logger
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Generator: GeneratorConfig{
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			MaxTokens: 500,
		},
		Limits: LimitsConfig{RequestsPerMinute: 10, Burst: 3},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// LoadConfig loads configuration from an optional YAML file and then applies
// SCHEDULER_* environment overrides.
//
// Environment variables split on the first underscore after the prefix:
//
//	SCHEDULER_SERVER_PORT       -> server.port
//	SCHEDULER_GENERATOR_API_KEY -> generator.api_key
//
// OPENAI_API_KEY is used when no key is configured otherwise. A missing file
// at path is not an error; path "" skips the file entirely.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if content != nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Generator.APIKey == "" {
		cfg.Generator.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the pipeline cannot run without
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Generator.BaseURL == "" {
		return fmt.Errorf("generator base_url is required")
	}
	if c.Generator.Model == "" {
		return fmt.Errorf("generator model is required")
	}
	if c.Generator.MaxTokens < 0 {
		return fmt.Errorf("generator max_tokens must not be negative")
	}
	if c.Limits.RequestsPerMinute < 0 || c.Limits.Burst < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// readConfigFile returns nil content when the file does not exist
func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// envKey maps SCHEDULER_GENERATOR_API_KEY to generator.api_key
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}
