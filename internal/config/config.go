// Package config resolves runtime settings from flags, WELLBEING_* env vars,
// an optional YAML file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. WELLBEING_DATA_DIR.
const EnvPrefix = "WELLBEING"

// Config is the resolved configuration.
type Config struct {
	DataDir      string
	DB           string
	PhotoRoot    string
	BackupDir    string
	Fallback     string
	Journal      string
	LogLevel     slog.Level
	LogFormat    string
	JournalLevel slog.Level
	ServeAddr    string
}

// SetDefaults registers the defaults that do not depend on data_dir.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("journal.level", "info")
	v.SetDefault("serve.addr", "127.0.0.1:8765")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".wellbeing"
	}
	return filepath.Join(home, ".wellbeing")
}

// New returns a viper instance wired for env lookup with defaults set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads the config file, if any, and resolves every path. An explicit
// file must exist; the implicit <data_dir>/config.yaml is optional.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		implicit := filepath.Join(expandHome(v.GetString("data_dir")), "config.yaml")
		if _, err := os.Stat(implicit); err == nil {
			v.SetConfigFile(implicit)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", implicit, err)
			}
		}
	}

	dataDir := expandHome(strings.TrimSpace(v.GetString("data_dir")))
	if dataDir == "" {
		return Config{}, errors.New("data_dir is empty")
	}

	cfg := Config{
		DataDir:   dataDir,
		DB:        pathOr(v, "db", filepath.Join(dataDir, "wellbeing.db")),
		PhotoRoot: pathOr(v, "photo_dir", dataDir),
		BackupDir: pathOr(v, "backup_dir", filepath.Join(dataDir, "backup")),
		Fallback:  pathOr(v, "fallback", filepath.Join(dataDir, "preferences.json")),
		Journal:   pathOr(v, "journal", filepath.Join(dataDir, "error_logs.json")),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		ServeAddr: strings.TrimSpace(v.GetString("serve.addr")),
	}

	var err error
	if cfg.LogLevel, err = ParseLevel(v.GetString("log.level")); err != nil {
		return Config{}, fmt.Errorf("log.level: %w", err)
	}
	if cfg.JournalLevel, err = ParseLevel(v.GetString("journal.level")); err != nil {
		return Config{}, fmt.Errorf("journal.level: %w", err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("log.format: unknown format %q (want text or json)", cfg.LogFormat)
	}
	return cfg, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, err
	}
	return l, nil
}

func pathOr(v *viper.Viper, key, def string) string {
	if p := strings.TrimSpace(v.GetString(key)); p != "" {
		return expandHome(p)
	}
	return def
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
