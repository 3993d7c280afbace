// Package config loads math2python configuration from defaults, an optional
// TOML file, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultListenAddr = ":8000"
	DefaultBaseURL    = "https://openrouter.ai/api/v1"
	DefaultModel      = "qwen/qwen-2.5-32b-instruct"
	DefaultTimeout    = 2 * time.Minute

	// DummyAPIKey lets the process start without a key; upstream calls will
	// fail and fall back to demo responses.
	DummyAPIKey = "dummy-key-to-prevent-startup-crash"

	// placeholderAPIKey is the value shipped in the example .env file.
	placeholderAPIKey = "CHANGE_THIS_TO_YOUR_REAL_KEY_HERE"
)

// Environment variables read by Load.
const (
	EnvAPIKey  = "OPENROUTER_API_KEY"
	EnvModel   = "OPENROUTER_MODEL"
	EnvBaseURL = "OPENROUTER_BASE_URL"
	EnvPort    = "PORT"
	EnvDebug   = "MATH2PYTHON_DEBUG"
)

// Config is the process-wide configuration. It is built once at startup and
// passed into constructors.
type Config struct {
	// Address to listen on (e.g., ":8000")
	ListenAddr string `toml:"listen"`

	Debug   bool `toml:"debug"`
	LogJSON bool `toml:"log_json"`

	// AllowOrigins is the CORS allow list, comma separated.
	AllowOrigins string `toml:"allow_origins"`

	// MCP mounts the MCP streamable HTTP handler at /mcp.
	MCP bool `toml:"mcp"`

	LLM    LLMConfig    `toml:"llm"`
	Record RecordConfig `toml:"record"`
}

// LLMConfig configures the upstream completion API.
type LLMConfig struct {
	BaseURL     string        `toml:"base_url"`
	APIKey      string        `toml:"api_key"`
	Model       string        `toml:"model"`
	Timeout     time.Duration `toml:"timeout"`
	Temperature *float64      `toml:"temperature"`

	// OpenRouter attribution headers
	Referer string `toml:"referer"`
	Title   string `toml:"title"`
}

// RecordConfig configures the conversion tape.
type RecordConfig struct {
	Enabled bool `toml:"enabled"`

	// DBPath is the path to the SQLite database file. Empty keeps the tape
	// in memory.
	DBPath string `toml:"db"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:   DefaultListenAddr,
		AllowOrigins: "*",
		LLM: LLMConfig{
			BaseURL: DefaultBaseURL,
			Model:   DefaultModel,
			Timeout: DefaultTimeout,
			Title:   "Math2Python",
		},
	}
}

// Load builds a Config. path may be empty to skip the TOML file. envFile is
// loaded with godotenv if it exists; variables already set in the
// environment win over it.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("could not decode config file %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load env file %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		c.ListenAddr = ":" + v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDebug, v, err)
		}
		c.Debug = debug
	}
	return nil
}

// HasAPIKey reports whether a usable API key is configured.
func (c *Config) HasAPIKey() bool {
	key := c.LLM.APIKey
	return key != "" && key != placeholderAPIKey && key != DummyAPIKey
}

// EnsureAPIKey replaces a missing or placeholder key with DummyAPIKey and
// reports whether it did so.
func (c *Config) EnsureAPIKey() bool {
	if c.HasAPIKey() {
		return false
	}
	c.LLM.APIKey = DummyAPIKey
	return true
}
