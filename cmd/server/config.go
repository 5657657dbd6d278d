package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type tlsConfig struct {
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	SelfSigned bool   `yaml:"self_signed"`
	HTTP3      bool   `yaml:"http3"`
}

type config struct {
	Addr          string        `yaml:"addr"`
	DataDir       string        `yaml:"data_dir"`
	Dataset       string        `yaml:"dataset"`
	SourcesDB     string        `yaml:"sources_db"`
	CacheSize     int           `yaml:"cache_size"`
	CheckInterval time.Duration `yaml:"check_interval"`
	LogLevel      string        `yaml:"log_level"`
	TLS           tlsConfig     `yaml:"tls"`
}

func defaultConfig() config {
	return config{
		Addr:      ":8420",
		DataDir:   "data",
		Dataset:   "classi",
		CacheSize: 1024,
		LogLevel:  "info",
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.CacheSize < 0 {
		return cfg, fmt.Errorf("cache_size must be >= 0, got %d", cfg.CacheSize)
	}
	return cfg, nil
}

// datasetDir is the directory the record store loads from.
func (c config) datasetDir() string {
	return filepath.Join(c.DataDir, c.Dataset)
}

// sourcesDBPath defaults to sources.db inside the data directory.
func (c config) sourcesDBPath() string {
	if c.SourcesDB != "" {
		return c.SourcesDB
	}
	return filepath.Join(c.DataDir, "sources.db")
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", s, err)
	}
	return lvl, nil
}

func newLogger(level string) *slog.Logger {
	lvl, err := parseLevel(level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	if err != nil {
		logger.Warn("invalid log level, using info", "error", err)
	}
	return logger
}
