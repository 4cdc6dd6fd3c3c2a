package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "psannotate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `
mode: batch
source: ./scripts
dest: ./out
model: test-model
timeout_seconds: 10
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeBatch, cfg.Mode)
	assert.Equal(t, "./scripts", cfg.Source)
	assert.Equal(t, "./out", cfg.Dest)
	assert.Equal(t, "test-model", cfg.Model)
	assert.Equal(t, 10, cfg.TimeoutS)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "mode: batch\nbogus_field: 1\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "decode config")
}

func TestLoad_RejectsAPIKeyInFile(t *testing.T) {
	// The key is deliberately not a file field; it must arrive via env,
	// flag, or prompt.
	path := writeConfig(t, "apikey: sk-secret\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.Endpoint)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, ".ps1", cfg.Extension)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, "logs/psannotate.log", cfg.LogFile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestSetDefaults_KeepsExplicitTimeout(t *testing.T) {
	cfg := Config{Timeout: 5 * time.Second}
	cfg.SetDefaults()
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestFromEnv_FillsOnlyUnset(t *testing.T) {
	t.Setenv("PSANNOTATE_API_KEY", "env-key")
	t.Setenv("PSANNOTATE_MODEL", "env-model")
	t.Setenv("PSANNOTATE_MODE", "batch")

	cfg := Config{Model: "explicit-model"}
	cfg.FromEnv()

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "explicit-model", cfg.Model)
	assert.Equal(t, ModeBatch, cfg.Mode)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Mode:      ModeSingle,
		APIKey:    "key",
		Source:    "in.ps1",
		Dest:      "out.ps1",
		Extension: ".ps1",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad mode", func(c *Config) { c.Mode = "recursive" }, "mode must be"},
		{"missing key", func(c *Config) { c.APIKey = "" }, "api key is required"},
		{"missing source", func(c *Config) { c.Source = "" }, "source path is required"},
		{"missing dest", func(c *Config) { c.Dest = "" }, "destination path is required"},
		{"bad extension", func(c *Config) { c.Extension = "ps1" }, "extension must start with a dot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLogValueRedactsKey(t *testing.T) {
	cfg := Config{APIKey: "sk-secret", Source: "a", Dest: "b"}
	assert.NotContains(t, cfg.LogValue().String(), "sk-secret")
}
