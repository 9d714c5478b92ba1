package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsFollowDataDir(t *testing.T) {
	dir := t.TempDir()
	v := New()
	v.Set("data_dir", dir)

	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DB != filepath.Join(dir, "wellbeing.db") {
		t.Errorf("db = %q", cfg.DB)
	}
	if cfg.BackupDir != filepath.Join(dir, "backup") {
		t.Errorf("backup dir = %q", cfg.BackupDir)
	}
	if cfg.Fallback != filepath.Join(dir, "preferences.json") || cfg.Journal != filepath.Join(dir, "error_logs.json") {
		t.Errorf("unexpected file paths: %+v", cfg)
	}
	if cfg.PhotoRoot != dir {
		t.Errorf("photo root = %q", cfg.PhotoRoot)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" || cfg.ServeAddr != "127.0.0.1:8765" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WELLBEING_DATA_DIR", dir)
	t.Setenv("WELLBEING_LOG_LEVEL", "debug")
	t.Setenv("WELLBEING_DB", filepath.Join(dir, "other.db"))

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != dir || cfg.DB != filepath.Join(dir, "other.db") {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.LogLevel)
	}
}

func TestLoadImplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "log:\n  format: json\njournal:\n  level: warn\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	v := New()
	v.Set("data_dir", dir)

	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogFormat != "json" || cfg.JournalLevel != slog.LevelWarn {
		t.Errorf("config file not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	v := New()
	v.Set("data_dir", t.TempDir())
	v.Set("log.format", "xml")
	if _, err := Load(v, ""); err == nil {
		t.Error("expected error for unknown log format")
	}

	v = New()
	v.Set("data_dir", t.TempDir())
	v.Set("log.level", "loud")
	if _, err := Load(v, ""); err == nil {
		t.Error("expected error for unknown level")
	}

	if _, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}
