// Package config holds the run configuration for psannotate.
//
// A Config is assembled once at process entry from, in precedence order,
// command-line flags, environment variables (optionally loaded from a .env
// file), an optional YAML config file, and interactive prompts. It is passed
// down explicitly; nothing reads ambient state after startup.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Mode selects single-file or recursive directory annotation.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

// Config is the complete run configuration.
type Config struct {
	Mode   Mode   `yaml:"mode,omitempty"`
	APIKey string `yaml:"-"` // never read from the config file
	Source string `yaml:"source,omitempty"`
	Dest   string `yaml:"dest,omitempty"`

	Endpoint  string        `yaml:"endpoint,omitempty"`
	Model     string        `yaml:"model,omitempty"`
	Extension string        `yaml:"extension,omitempty"`
	Timeout   time.Duration `yaml:"-"`
	TimeoutS  int           `yaml:"timeout_seconds,omitempty"`

	LogFile  string `yaml:"log_file,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`

	// Yes skips the confirmation prompt before the batch starts.
	Yes bool `yaml:"-"`
}

// LogValue masks the API key when the config is logged via slog.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("mode", string(c.Mode)),
		slog.String("source", c.Source),
		slog.String("dest", c.Dest),
		slog.String("endpoint", c.Endpoint),
		slog.String("model", c.Model),
		slog.String("extension", c.Extension),
		slog.Duration("timeout", c.Timeout),
		slog.String("api_key", "[REDACTED]"),
	)
}

// Load reads configuration from a YAML file. Unknown fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// FromEnv fills unset fields from PSANNOTATE_* environment variables,
// loading a .env file first if one is present in the working directory.
func (c *Config) FromEnv() {
	_ = godotenv.Load()

	setIfEmpty := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	setIfEmpty(&c.APIKey, "PSANNOTATE_API_KEY")
	setIfEmpty(&c.Endpoint, "PSANNOTATE_ENDPOINT")
	setIfEmpty(&c.Model, "PSANNOTATE_MODEL")
	if string(c.Mode) == "" {
		c.Mode = Mode(os.Getenv("PSANNOTATE_MODE"))
	}
	setIfEmpty(&c.Source, "PSANNOTATE_SOURCE")
	setIfEmpty(&c.Dest, "PSANNOTATE_DEST")
}

// SetDefaults applies explicit default values to unset fields.
func (c *Config) SetDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "https://generativelanguage.googleapis.com"
	}
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.Extension == "" {
		c.Extension = ".ps1"
	}
	if c.TimeoutS <= 0 {
		c.TimeoutS = 60
	}
	if c.Timeout == 0 {
		c.Timeout = time.Duration(c.TimeoutS) * time.Second
	}
	if c.LogFile == "" {
		c.LogFile = "logs/psannotate.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks that all required values are present and well-formed.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeSingle, ModeBatch:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeSingle, ModeBatch, c.Mode)
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key is required (set PSANNOTATE_API_KEY or enter it at the prompt)")
	}
	if c.Source == "" {
		return fmt.Errorf("source path is required")
	}
	if c.Dest == "" {
		return fmt.Errorf("destination path is required")
	}
	if !strings.HasPrefix(c.Extension, ".") {
		return fmt.Errorf("extension must start with a dot, got %q", c.Extension)
	}
	return nil
}
