package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.StatsPoll != 10*time.Second || cfg.LogsPoll != 3*time.Second {
		t.Fatalf("poll intervals = %v/%v, want 10s/3s", cfg.StatsPoll, cfg.LogsPoll)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("PageSize = %d, want 10", cfg.PageSize)
	}
	wantExport, err := expandPath(defaultExportDir)
	if err != nil {
		t.Fatalf("expandPath(defaultExportDir) returned error: %v", err)
	}
	if cfg.ExportDir != wantExport {
		t.Fatalf("ExportDir = %q, want %q", cfg.ExportDir, wantExport)
	}
	if !strings.HasPrefix(cfg.DebugLog, home) {
		t.Fatalf("DebugLog = %q, want it under HOME %q", cfg.DebugLog, home)
	}
	if cfg.LogFile != "" {
		t.Fatalf("LogFile = %q, want empty", cfg.LogFile)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  http://10.0.0.5:9999/api  "
stats_poll = " 30s "
logs_poll = "500ms"
page_size = 25
export_dir = "  ~/exports  "
log_file = "~/agents/outreach.log"
log_level = " DEBUG "
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://10.0.0.5:9999/api" {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, "http://10.0.0.5:9999/api")
	}
	if cfg.StatsPoll != 30*time.Second || cfg.LogsPoll != 500*time.Millisecond {
		t.Fatalf("poll intervals = %v/%v, want 30s/500ms", cfg.StatsPoll, cfg.LogsPoll)
	}
	if cfg.PageSize != 25 {
		t.Fatalf("PageSize = %d, want 25", cfg.PageSize)
	}
	if cfg.ExportDir != filepath.Join(home, "exports") {
		t.Fatalf("ExportDir = %q, want %q", cfg.ExportDir, filepath.Join(home, "exports"))
	}
	if cfg.LogFile != filepath.Join(home, "agents", "outreach.log") {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "   "
stats_poll = ""
page_size = 0
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.StatsPoll != defaultStatsPoll {
		t.Fatalf("StatsPoll = %v, want %v", cfg.StatsPoll, defaultStatsPoll)
	}
	if cfg.PageSize != defaultPageSize {
		t.Fatalf("PageSize = %d, want %d", cfg.PageSize, defaultPageSize)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_InvalidIntervalFails(t *testing.T) {
	for _, raw := range []string{`stats_poll = "soon"`, `logs_poll = "-1s"`} {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
			t.Fatalf("Load(%s) error = %v, want parse config error", raw, err)
		}
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestExportPath_UsesExportDirAndTimestamp(t *testing.T) {
	cfg := Config{ExportDir: "/tmp/exports"}
	at := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	got := cfg.ExportPath(at)
	want := filepath.Join("/tmp/exports", "authors_export_20240309_140506.csv")
	if got != want {
		t.Fatalf("ExportPath = %q, want %q", got, want)
	}
}

func TestExportPath_DefaultsWhenDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.ExportPath(time.Now())
	if !strings.HasPrefix(got, filepath.Join(home, "Downloads")) {
		t.Fatalf("ExportPath = %q, want it under ~/Downloads", got)
	}
}
