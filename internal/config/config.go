// Package config loads logbook settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sadopc/logbook/internal/store"
)

type Config struct {
	DBPath    string
	LogFile   string
	LogLevel  slog.Level
	WeekStart time.Weekday
	// WeekStartSet reports whether LOGBOOK_WEEK_START was given, so the
	// stored setting applies otherwise.
	WeekStartSet bool
	Location     *time.Location

	logFileSet bool
}

// Load reads the configuration. An unknown time zone is an error; other
// malformed values fall back to their defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbPath := getEnv("LOGBOOK_DB_PATH", "")
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		dbPath = p
	}

	cfg := &Config{
		DBPath:   dbPath,
		LogFile:  getEnv("LOGBOOK_LOG_FILE", ""),
		LogLevel: parseLevel(getEnv("LOGBOOK_LOG_LEVEL", "info")),
		Location: time.Local,
	}
	cfg.logFileSet = cfg.LogFile != ""
	if !cfg.logFileSet {
		cfg.LogFile = defaultLogFile(dbPath)
	}

	ws := getEnvAsInt("LOGBOOK_WEEK_START", -1)
	if ws >= 0 && ws <= 6 {
		cfg.WeekStart = time.Weekday(ws)
		cfg.WeekStartSet = true
	} else {
		cfg.WeekStart = time.Monday
	}

	if tz := getEnv("LOGBOOK_TZ", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load time zone %q: %w", tz, err)
		}
		cfg.Location = loc
	}
	return cfg, nil
}

// WithDBPath overrides the database path. A log file that was not configured
// explicitly moves next to the database.
func (c *Config) WithDBPath(path string) {
	c.DBPath = path
	if !c.logFileSet {
		c.LogFile = defaultLogFile(path)
	}
}

func defaultLogFile(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "logbook.log")
}

// NewLogger opens the log file and returns a text logger writing to it,
// together with a closer for the file. The terminal belongs to the UI, so
// nothing is logged to stdout.
func (c *Config) NewLogger() (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: c.LogLevel}))
	return logger, f, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return defaultValue
}
