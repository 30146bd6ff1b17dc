package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	sql *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", dbPath)
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer connection; SQLite serializes writes anyway.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(0)

	s := &Store{sql: sqldb}
	if err := s.migrate(context.Background()); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.sql.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			referrer_id INTEGER,
			is_member INTEGER NOT NULL DEFAULT 0,
			total_referrals INTEGER NOT NULL DEFAULT 0,
			points INTEGER NOT NULL DEFAULT 0,
			is_banned INTEGER NOT NULL DEFAULT 0,
			join_date INTEGER NOT NULL,
			last_activity INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS admins (
			user_id INTEGER PRIMARY KEY,
			is_super INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS referrals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			referrer_id INTEGER NOT NULL REFERENCES users(user_id),
			referred_id INTEGER NOT NULL REFERENCES users(user_id),
			created_at INTEGER NOT NULL,
			reward_given INTEGER NOT NULL DEFAULT 0,
			UNIQUE(referrer_id, referred_id)
		);`,
		`CREATE TABLE IF NOT EXISTS exclusive_content (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			file_id TEXT NOT NULL DEFAULT '',
			file_type TEXT NOT NULL DEFAULT '',
			required_referrals INTEGER NOT NULL DEFAULT 0,
			required_points INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS reward_claims (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(user_id),
			content_id INTEGER NOT NULL REFERENCES exclusive_content(id),
			claimed_at INTEGER NOT NULL,
			UNIQUE(user_id, content_id)
		);`,
		`CREATE TABLE IF NOT EXISTS campaign_runs (
			id TEXT PRIMARY KEY,
			selector TEXT NOT NULL,
			message_text TEXT NOT NULL,
			media_type TEXT NOT NULL DEFAULT '',
			media_file_id TEXT NOT NULL DEFAULT '',
			personalized INTEGER NOT NULL DEFAULT 0,
			scheduled_at INTEGER,
			executed INTEGER NOT NULL DEFAULT 0,
			executed_at INTEGER,
			targeted INTEGER NOT NULL DEFAULT 0,
			sent INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			completed_at INTEGER,
			created_by INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ab_tests (
			id TEXT PRIMARY KEY,
			variant_a TEXT NOT NULL,
			variant_b TEXT NOT NULL,
			ratio REAL NOT NULL,
			status TEXT NOT NULL DEFAULT 'created',
			winner TEXT,
			confidence REAL,
			delta REAL,
			verdict_reason TEXT,
			created_at INTEGER NOT NULL,
			analyzed_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS ab_exposures (
			test_id TEXT NOT NULL REFERENCES ab_tests(id),
			user_id INTEGER NOT NULL,
			grp TEXT NOT NULL,
			delivered INTEGER NOT NULL DEFAULT 0,
			opened INTEGER NOT NULL DEFAULT 0,
			clicked INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			UNIQUE(test_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS analytics_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_type TEXT NOT NULL,
			user_id INTEGER NOT NULL DEFAULT 0,
			data TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_last_activity ON users(last_activity);`,
		`CREATE INDEX IF NOT EXISTS idx_users_referrals ON users(total_referrals);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_due ON campaign_runs(executed, scheduled_at);`,
		`CREATE INDEX IF NOT EXISTS idx_events_user_time ON analytics_events(user_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_events_time ON analytics_events(created_at);`,
	}
	for _, st := range stmts {
		if _, err := s.sql.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}
