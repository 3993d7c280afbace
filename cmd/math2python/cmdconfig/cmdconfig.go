// Package cmdconfig holds the flags and wiring shared by math2python commands.
package cmdconfig

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/math2python/pkg/config"
	"github.com/papercomputeco/math2python/pkg/conversion"
	"github.com/papercomputeco/math2python/pkg/llm"
	"github.com/papercomputeco/math2python/pkg/logger"
	"github.com/papercomputeco/math2python/pkg/merkle"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// Options are the configuration flags every command accepts.
type Options struct {
	ConfigPath string
	EnvFile    string
	Debug      bool
}

// AddFlags registers the shared flags on cmd.
func (o *Options) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.ConfigPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().StringVar(&o.EnvFile, "env-file", ".env", "Path to .env file (ignored if missing)")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug logging")
}

// Load reads the configuration and applies the shared flags.
func (o *Options) Load() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath, o.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	if o.Debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// NewLogger builds the process logger writing to out.
func NewLogger(cfg *config.Config, out io.Writer) *zap.Logger {
	return logger.NewLogger(logger.Options{
		Debug:  cfg.Debug,
		JSON:   cfg.LogJSON,
		Output: out,
	})
}

// NewService wires the upstream client and the conversion service. A missing
// API key is replaced by a dummy so the process can start.
func NewService(cfg *config.Config, log *zap.Logger) *conversion.Service {
	if cfg.EnsureAPIKey() {
		log.Warn("OPENROUTER_API_KEY is not set or is invalid, LLM calls will fail")
	}

	client := llm.NewClient(llm.ClientConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLM.Timeout,
		Referer: cfg.LLM.Referer,
		Title:   cfg.LLM.Title,
	}, log)

	return conversion.NewService(conversion.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	}, client, conversion.KeywordSelector{}, log)
}

// OpenStorer opens the conversion tape: SQLite when dbPath is set,
// otherwise in memory.
func OpenStorer(dbPath string, log *zap.Logger) (merkle.Storer, error) {
	if dbPath == "" {
		log.Info("using in-memory storage")
		return merkle.NewMemoryStorer(), nil
	}

	storer, err := merkle.NewSQLiteStorer(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
	}
	log.Info("using SQLite storage", zap.String("path", dbPath))
	return storer, nil
}
