package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8090"`

	// Auth. Empty disables bearer checks on /api.
	APIKey string `env:"DOCSLICE_API_KEY"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Worker pool
	WorkerCount        int `env:"WORKER_COUNT" envDefault:"4"`
	MaxQueueSize       int `env:"MAX_QUEUE_SIZE" envDefault:"100"`
	MaxConcurrentParse int `env:"MAX_CONCURRENT_PARSE" envDefault:"8"`

	// Upload limits
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"` // 50MB
	BatchMaxFiles  int   `env:"BATCH_MAX_FILES" envDefault:"20"`

	// Job state
	JobTTL time.Duration `env:"JOB_TTL" envDefault:"1h"`

	// PDF
	PDFFallbackPdftotext bool          `env:"PDF_FALLBACK_PDFTOTEXT" envDefault:"true"`
	MinerUURL            string        `env:"MINERU_URL"`
	MinerUTimeout        time.Duration `env:"MINERU_TIMEOUT" envDefault:"300s"`

	// Segmentation
	CatalogFile     string `env:"CATALOG_FILE"`
	DefaultSplitter string `env:"DEFAULT_SPLITTER"`
}

// Load reads the environment. Escapes \n and \t in DEFAULT_SPLITTER are
// expanded so the value can be set from a shell or .env file.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.DefaultSplitter = unescape(cfg.DefaultSplitter)
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("MAX_QUEUE_SIZE must be positive, got %d", c.MaxQueueSize)
	}
	if c.MaxConcurrentParse <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_PARSE must be positive, got %d", c.MaxConcurrentParse)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.BatchMaxFiles <= 0 {
		return fmt.Errorf("BATCH_MAX_FILES must be positive, got %d", c.BatchMaxFiles)
	}
	if c.JobTTL <= 0 {
		return fmt.Errorf("JOB_TTL must be positive, got %s", c.JobTTL)
	}
	if c.MinerUURL != "" && c.MinerUTimeout <= 0 {
		return fmt.Errorf("MINERU_TIMEOUT must be positive, got %s", c.MinerUTimeout)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel)
	}
}

var escapes = strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t")

func unescape(s string) string {
	return escapes.Replace(s)
}
