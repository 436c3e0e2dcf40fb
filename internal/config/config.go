package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds scout's local settings.
type Config struct {
	APIURL    string
	StatsPoll time.Duration
	LogsPoll  time.Duration
	PageSize  int
	ExportDir string
	LogFile   string // optional agent log tailed instead of GET /logs
	DebugLog  string
	LogLevel  string
}

const (
	defaultConfigPath = "~/.config/scout/config.toml"
	defaultAPIURL     = "http://127.0.0.1:5000/api"
	defaultStatsPoll  = 10 * time.Second
	defaultLogsPoll   = 3 * time.Second
	defaultPageSize   = 10
	defaultExportDir  = "~/Downloads"
	defaultDebugLog   = "~/.local/state/scout/scout.log"
	defaultLogLevel   = "info"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:    defaultAPIURL,
		StatsPoll: defaultStatsPoll,
		LogsPoll:  defaultLogsPoll,
		PageSize:  defaultPageSize,
		ExportDir: mustExpand(defaultExportDir),
		DebugLog:  mustExpand(defaultDebugLog),
		LogLevel:  defaultLogLevel,
	}
}

// DefaultPath returns the unexpanded default config location.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the scout config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL    string `toml:"api_url"`
		StatsPoll string `toml:"stats_poll"`
		LogsPoll  string `toml:"logs_poll"`
		PageSize  int    `toml:"page_size"`
		ExportDir string `toml:"export_dir"`
		LogFile   string `toml:"log_file"`
		DebugLog  string `toml:"debug_log"`
		LogLevel  string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if cfg.StatsPoll, err = parseInterval("stats_poll", raw.StatsPoll, defaultStatsPoll); err != nil {
		return Config{}, err
	}
	if cfg.LogsPoll, err = parseInterval("logs_poll", raw.LogsPoll, defaultLogsPoll); err != nil {
		return Config{}, err
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if v := strings.TrimSpace(raw.ExportDir); v != "" {
		cfg.ExportDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.DebugLog); v != "" {
		cfg.DebugLog = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// ExportPath returns where a CSV export taken at now is written.
func (c Config) ExportPath(now time.Time) string {
	dir := strings.TrimSpace(c.ExportDir)
	if dir == "" {
		dir = mustExpand(defaultExportDir)
	}
	return filepath.Join(dir, "authors_export_"+now.Format("20060102_150405")+".csv")
}

// ExpandPath expands a leading "~" and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func parseInterval(key, raw string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive", key)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
