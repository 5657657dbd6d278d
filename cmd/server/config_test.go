package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `addr: ":9000"
data_dir: /srv/cercaclasse
dataset: anagrafe-statali
cache_size: 0
check_interval: 6h
log_level: debug
tls:
  self_signed: true
  http3: true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.CacheSize != 0 {
		t.Errorf("CacheSize = %d, want 0", cfg.CacheSize)
	}
	if cfg.CheckInterval != 6*time.Hour {
		t.Errorf("CheckInterval = %v, want 6h", cfg.CheckInterval)
	}
	if !cfg.TLS.SelfSigned || !cfg.TLS.HTTP3 {
		t.Errorf("TLS = %+v", cfg.TLS)
	}
	if got := cfg.datasetDir(); got != filepath.Join("/srv/cercaclasse", "anagrafe-statali") {
		t.Errorf("datasetDir = %q", got)
	}
	if got := cfg.sourcesDBPath(); got != filepath.Join("/srv/cercaclasse", "sources.db") {
		t.Errorf("sourcesDBPath = %q", got)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("addr: [unterminated"), 0o644)
	if _, err := loadConfig(bad); err == nil {
		t.Error("expected parse error")
	}

	neg := filepath.Join(dir, "neg.yaml")
	os.WriteFile(neg, []byte("cache_size: -1\n"), 0o644)
	if _, err := loadConfig(neg); err == nil {
		t.Error("expected error for negative cache_size")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("parseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSourcesDBPath_Override(t *testing.T) {
	cfg := defaultConfig()
	cfg.SourcesDB = "/var/lib/cercaclasse/sources.db"
	if got := cfg.sourcesDBPath(); got != cfg.SourcesDB {
		t.Errorf("sourcesDBPath = %q", got)
	}
}

func TestOpenSources_FreshDataDir(t *testing.T) {
	cfg := defaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "fresh", "data")

	sdb, err := openSources(cfg.sourcesDBPath())
	if err != nil {
		t.Fatalf("openSources: %v", err)
	}
	defer sdb.Close()

	sources, err := sdb.ListSources()
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) == 0 {
		t.Error("expected built-in adapters to be seeded")
	}
}
