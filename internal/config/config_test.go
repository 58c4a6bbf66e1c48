package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable ApplyEnv reads; t.Setenv restores them after the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvBaseURL, EnvTimeoutSeconds, EnvInterpreter, EnvOpenAIKey, EnvOpenAIModel,
		EnvOpenAIBaseURL, EnvQueryLogPath, EnvHTTPAddr, EnvTelegramToken,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://api.em6.co.nz/v1", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, InterpreterKeyword, cfg.Interpreter)
	assert.Equal(t, ":memory:", cfg.QueryLogPath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"config.toml", "base_url = \"http://localhost:9000/v1\"\ntimeout_seconds = 3\n\n[openai]\nmodel = \"gpt-4o-mini\"\n"},
		{"config.yaml", "base_url: http://localhost:9000/v1\ntimeout_seconds: 3\nopenai:\n  model: gpt-4o-mini\n"},
		{"config.yml", "base_url: http://localhost:9000/v1\ntimeout_seconds: 3\nopenai:\n  model: gpt-4o-mini\n"},
		{"config.json", `{"base_url":"http://localhost:9000/v1","timeout_seconds":3,"openai":{"model":"gpt-4o-mini"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfigFile(writeFile(t, tt.name, tt.content))
			require.NoError(t, err)
			assert.Equal(t, "http://localhost:9000/v1", cfg.BaseURL)
			assert.Equal(t, 3, cfg.TimeoutSeconds)
			assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
		})
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "error accessing config file")

	_, err = LoadConfigFile(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")

	_, err = LoadConfigFile(writeFile(t, "config.ini", "base_url=x"))
	assert.ErrorContains(t, err, "unsupported config file format: .ini")

	_, err = LoadConfigFile(writeFile(t, "config.json", "{"))
	assert.ErrorContains(t, err, "error parsing JSON file")
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "http_addr: 127.0.0.1:9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
	assert.Equal(t, "https://api.em6.co.nz/v1", cfg.BaseURL)
	assert.Equal(t, 10, cfg.TimeoutSeconds)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", "base_url = \"http://file.example/v1\"\ntimeout_seconds = 3\n")
	t.Setenv(EnvBaseURL, "http://env.example/v1")
	t.Setenv(EnvTimeoutSeconds, " 7 ")
	t.Setenv(EnvInterpreter, InterpreterOpenAI)
	t.Setenv(EnvOpenAIKey, "sk-test")
	t.Setenv(EnvTelegramToken, "123:abc")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/v1", cfg.BaseURL)
	assert.Equal(t, 7, cfg.TimeoutSeconds)
	assert.Equal(t, InterpreterOpenAI, cfg.Interpreter)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.NoError(t, cfg.Validate())
}

func TestInvalidTimeoutEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeoutSeconds, "ten")

	_, err := Load("")
	assert.ErrorContains(t, err, EnvTimeoutSeconds)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	path := writeFile(t, ".env", "HTTP_ADDR=:7070\n")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, ":7070", os.Getenv(EnvHTTPAddr))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"relative url", func(c *Config) { c.BaseURL = "/v1" }, "invalid base_url"},
		{"ftp url", func(c *Config) { c.BaseURL = "ftp://grid.example" }, "invalid base_url"},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }, "timeout_seconds must be positive"},
		{"unknown interpreter", func(c *Config) { c.Interpreter = "magic" }, "unknown interpreter"},
		{"openai without key", func(c *Config) { c.Interpreter = InterpreterOpenAI }, "requires an OpenAI API key"},
		{"openai with key", func(c *Config) {
			c.Interpreter = InterpreterOpenAI
			c.OpenAI.APIKey = "sk-test"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
