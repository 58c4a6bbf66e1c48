// Package config loads the bot settings from defaults, a config file and the environment
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

const (
	InterpreterKeyword = "keyword"
	InterpreterOpenAI  = "openai"
)

// Environment variables read by ApplyEnv
const (
	EnvBaseURL        = "ELECTRICITY_API_BASE_URL"
	EnvTimeoutSeconds = "ELECTRICITY_API_TIMEOUT_SECONDS"
	EnvInterpreter    = "INTERPRETER"
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvOpenAIModel    = "OPENAI_MODEL"
	EnvOpenAIBaseURL  = "OPENAI_BASE_URL"
	EnvQueryLogPath   = "QUERY_LOG_PATH"
	EnvHTTPAddr       = "HTTP_ADDR"
	EnvTelegramToken  = "TELEGRAM_BOT_TOKEN"
)

// OpenAIConfig configures the optional LLM interpreter
type OpenAIConfig struct {
	APIKey  string `json:"api_key" yaml:"api_key" toml:"api_key"`
	Model   string `json:"model" yaml:"model" toml:"model"`
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`
}

// Config holds every setting of the bot
type Config struct {
	BaseURL        string       `json:"base_url" yaml:"base_url" toml:"base_url"`
	TimeoutSeconds int          `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	Interpreter    string       `json:"interpreter" yaml:"interpreter" toml:"interpreter"`
	OpenAI         OpenAIConfig `json:"openai" yaml:"openai" toml:"openai"`
	QueryLogPath   string       `json:"query_log_path" yaml:"query_log_path" toml:"query_log_path"`
	HTTPAddr       string       `json:"http_addr" yaml:"http_addr" toml:"http_addr"`
	TelegramToken  string       `json:"telegram_token" yaml:"telegram_token" toml:"telegram_token"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		BaseURL:        "https://api.em6.co.nz/v1",
		TimeoutSeconds: 10,
		Interpreter:    InterpreterKeyword,
		QueryLogPath:   ":memory:",
		HTTPAddr:       ":8080",
	}
}

// Load builds the configuration from defaults, the optional config file and the environment.
// Flags are applied by the caller afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg.merge(fileCfg)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads a TOML, YAML or JSON config file, chosen by extension
func LoadConfigFile(filePath string) (*Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	return &config, nil
}

// LoadDotEnv loads variables from a .env file into the environment.
// A missing file is not an error, and variables already set win over the file.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// envOrString returns the environment variable value if set, otherwise returns the default value.
func envOrString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// ApplyEnv overrides settings with the environment variables that are set
func (c *Config) ApplyEnv() error {
	c.BaseURL = envOrString(EnvBaseURL, c.BaseURL)
	c.Interpreter = envOrString(EnvInterpreter, c.Interpreter)
	c.OpenAI.APIKey = envOrString(EnvOpenAIKey, c.OpenAI.APIKey)
	c.OpenAI.Model = envOrString(EnvOpenAIModel, c.OpenAI.Model)
	c.OpenAI.BaseURL = envOrString(EnvOpenAIBaseURL, c.OpenAI.BaseURL)
	c.QueryLogPath = envOrString(EnvQueryLogPath, c.QueryLogPath)
	c.HTTPAddr = envOrString(EnvHTTPAddr, c.HTTPAddr)
	c.TelegramToken = envOrString(EnvTelegramToken, c.TelegramToken)

	if v, ok := os.LookupEnv(EnvTimeoutSeconds); ok {
		seconds, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeoutSeconds, v, err)
		}
		c.TimeoutSeconds = seconds
	}
	return nil
}

// merge copies every non-zero field of other onto c
func (c *Config) merge(other *Config) {
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	if other.TimeoutSeconds != 0 {
		c.TimeoutSeconds = other.TimeoutSeconds
	}
	if other.Interpreter != "" {
		c.Interpreter = other.Interpreter
	}
	if other.OpenAI.APIKey != "" {
		c.OpenAI.APIKey = other.OpenAI.APIKey
	}
	if other.OpenAI.Model != "" {
		c.OpenAI.Model = other.OpenAI.Model
	}
	if other.OpenAI.BaseURL != "" {
		c.OpenAI.BaseURL = other.OpenAI.BaseURL
	}
	if other.QueryLogPath != "" {
		c.QueryLogPath = other.QueryLogPath
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.TelegramToken != "" {
		c.TelegramToken = other.TelegramToken
	}
}

// Timeout returns the upstream request timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q: expected an http or https URL", c.BaseURL)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	switch c.Interpreter {
	case InterpreterKeyword:
	case InterpreterOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("interpreter %q requires an OpenAI API key (%s)", InterpreterOpenAI, EnvOpenAIKey)
		}
	default:
		return fmt.Errorf("unknown interpreter %q, expected %q or %q", c.Interpreter, InterpreterKeyword, InterpreterOpenAI)
	}
	return nil
}
