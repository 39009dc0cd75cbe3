package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const currentVersion = 2

var ErrNotFound = errors.New("not found")

type Store struct {
	db  *sql.DB
	loc *time.Location
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, loc: time.Local}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetLocation sets the zone loaded timestamps are expressed in.
func (s *Store) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	slog.Debug("database migrated", "from", version, "to", currentVersion)
	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS categories (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		icon        TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL,
		config      TEXT NOT NULL DEFAULT '',
		inverted    INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS category_children (
		parent_id   TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		child_id    TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (parent_id, child_id),
		CHECK (parent_id <> child_id)
	);

	CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		category_id TEXT NOT NULL REFERENCES categories(id),
		ts          INTEGER NOT NULL,
		data        TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_events_category_ts ON events(category_id, ts);

	CREATE TABLE IF NOT EXISTS targets (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL DEFAULT '',
		category_id    TEXT NOT NULL REFERENCES categories(id),
		schedule       TEXT NOT NULL,
		config         TEXT NOT NULL DEFAULT '',
		period_type    TEXT NOT NULL DEFAULT 'daily',
		period_days    INTEGER NOT NULL DEFAULT 0,
		week_start_day INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('week_start',    '1'),
		('default_range', '604800');
	`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *Store) migrateV2() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS graphs (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		type             TEXT NOT NULL DEFAULT 'bar',
		category_id      TEXT NOT NULL REFERENCES categories(id),
		range_seconds    INTEGER NOT NULL DEFAULT 604800,
		upper_limit      TEXT NOT NULL DEFAULT '',
		lower_limit      TEXT NOT NULL DEFAULT '',
		aggregation_mode TEXT NOT NULL DEFAULT 'daily',
		week_start_day   INTEGER NOT NULL DEFAULT 1,
		aggregation_days INTEGER NOT NULL DEFAULT 0,
		start_date       INTEGER,
		sort_order       INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/logbook/logbook.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "logbook", "logbook.db"), nil
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

func (s *Store) fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).In(s.loc)
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %s: %w", kind, id, err)
}
