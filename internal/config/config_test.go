package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DOCSLICE_API_KEY", "LOG_LEVEL", "WORKER_COUNT", "MAX_QUEUE_SIZE",
		"MAX_CONCURRENT_PARSE", "MAX_UPLOAD_BYTES", "BATCH_MAX_FILES", "JOB_TTL",
		"PDF_FALLBACK_PDFTOTEXT", "MINERU_URL", "MINERU_TIMEOUT", "CATALOG_FILE", "DEFAULT_SPLITTER",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 || cfg.MaxConcurrentParse != 8 {
		t.Errorf("unexpected pool defaults: %+v", cfg)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected 50MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h job TTL, got %s", cfg.JobTTL)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback on by default")
	}
	if cfg.MinerUTimeout != 300*time.Second {
		t.Errorf("expected 300s conversion timeout, got %s", cfg.MinerUTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "2")
	t.Setenv("JOB_TTL", "10m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("DEFAULT_SPLITTER", `\n---\n`)
	t.Setenv("MINERU_URL", "http://mineru:8000/file_parse")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" || cfg.WorkerCount != 2 {
		t.Errorf("expected overrides to apply, got port=%q workers=%d", cfg.Port, cfg.WorkerCount)
	}
	if cfg.JobTTL != 10*time.Minute {
		t.Errorf("expected 10m TTL, got %s", cfg.JobTTL)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
	if cfg.DefaultSplitter != "\n---\n" {
		t.Errorf("expected escapes to be expanded, got %q", cfg.DefaultSplitter)
	}
	if cfg.MinerUURL != "http://mineru:8000/file_parse" {
		t.Errorf("unexpected conversion URL %q", cfg.MinerUURL)
	}
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric WORKER_COUNT")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port:               "8090",
		LogLevel:           "info",
		WorkerCount:        1,
		MaxQueueSize:       1,
		MaxConcurrentParse: 1,
		MaxUploadBytes:     1,
		BatchMaxFiles:      1,
		JobTTL:             time.Minute,
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.WorkerCount = 0 }},
		{"zero queue", func(c *Config) { c.MaxQueueSize = 0 }},
		{"zero parse concurrency", func(c *Config) { c.MaxConcurrentParse = 0 }},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }},
		{"zero batch size", func(c *Config) { c.BatchMaxFiles = 0 }},
		{"zero ttl", func(c *Config) { c.JobTTL = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"conversion without timeout", func(c *Config) { c.MinerUURL = "http://x"; c.MinerUTimeout = 0 }},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := Config{LogLevel: in}.SlogLevel()
		if err != nil {
			t.Errorf("level %q: unexpected error %v", in, err)
		}
		if got != want {
			t.Errorf("level %q: expected %s, got %s", in, want, got)
		}
	}
}
