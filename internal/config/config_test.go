package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LOGBOOK_DB_PATH", "LOGBOOK_LOG_FILE", "LOGBOOK_LOG_LEVEL", "LOGBOOK_WEEK_START", "LOGBOOK_TZ"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// Keep a stray .env in the package directory out of the picture.
	t.Chdir(t.TempDir())
}

// ============================================================
// Load
// ============================================================

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(cfg.DBPath, filepath.Join("logbook", "logbook.db")) {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.LogFile != filepath.Join(filepath.Dir(cfg.DBPath), "logbook.log") {
		t.Fatalf("log file = %q", cfg.LogFile)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("log level = %v", cfg.LogLevel)
	}
	if cfg.WeekStart != time.Monday || cfg.WeekStartSet {
		t.Fatalf("week start = %v (set %v)", cfg.WeekStart, cfg.WeekStartSet)
	}
	if cfg.Location != time.Local {
		t.Fatalf("location = %v", cfg.Location)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("LOGBOOK_DB_PATH", filepath.Join(dir, "x.db"))
	t.Setenv("LOGBOOK_LOG_LEVEL", "DEBUG")
	t.Setenv("LOGBOOK_WEEK_START", "0")
	t.Setenv("LOGBOOK_TZ", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != filepath.Join(dir, "x.db") || cfg.LogFile != filepath.Join(dir, "logbook.log") {
		t.Fatalf("paths = %q, %q", cfg.DBPath, cfg.LogFile)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("log level = %v", cfg.LogLevel)
	}
	if cfg.WeekStart != time.Sunday || !cfg.WeekStartSet {
		t.Fatalf("week start = %v (set %v)", cfg.WeekStart, cfg.WeekStartSet)
	}
	if cfg.Location.String() != "UTC" {
		t.Fatalf("location = %v", cfg.Location)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	if err := os.WriteFile(".env", []byte("LOGBOOK_WEEK_START=3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WeekStart != time.Wednesday {
		t.Fatalf("week start = %v", cfg.WeekStart)
	}
	os.Unsetenv("LOGBOOK_WEEK_START")
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOGBOOK_WEEK_START", "9")
	t.Setenv("LOGBOOK_LOG_LEVEL", "loud")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WeekStart != time.Monday || cfg.WeekStartSet {
		t.Fatalf("out of range week start should fall back, got %v", cfg.WeekStart)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("log level = %v", cfg.LogLevel)
	}

	t.Setenv("LOGBOOK_TZ", "Nowhere/City")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown time zone")
	}
}

func TestWithDBPath(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	cfg.WithDBPath(filepath.Join(dir, "other.db"))
	if cfg.LogFile != filepath.Join(dir, "logbook.log") {
		t.Fatalf("log file should follow the database, got %q", cfg.LogFile)
	}

	t.Setenv("LOGBOOK_LOG_FILE", filepath.Join(dir, "fixed.log"))
	cfg, _ = Load()
	cfg.WithDBPath(filepath.Join(dir, "x", "other.db"))
	if cfg.LogFile != filepath.Join(dir, "fixed.log") {
		t.Fatalf("explicit log file moved: %q", cfg.LogFile)
	}
}

// ============================================================
// Logger
// ============================================================

func TestNewLogger(t *testing.T) {
	cfg := &Config{LogFile: filepath.Join(t.TempDir(), "logs", "logbook.log"), LogLevel: slog.LevelWarn}
	logger, closer, err := cfg.NewLogger()
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("schedule unusable", "target", "t1")
	closer.Close()

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, "schedule unusable") || !strings.Contains(out, "target=t1") {
		t.Fatalf("unexpected log output: %s", out)
	}
}
