package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLiteStore implements storage using SQLite (the default local cache)
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore creates a new SQLite storage
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	// WAL lets a history query read while an analysis writes
	db.Exec("PRAGMA journal_mode = WAL")
	db.Exec("PRAGMA foreign_keys = ON")

	store := &SQLiteStore{sqlStore{db: db, logger: logger}}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.WithField("path", path).Debug("Opened SQLite store")
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		repo TEXT PRIMARY KEY,
		fetched_at DATETIME NOT NULL,
		max_commits INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS snapshot_commits (
		repo TEXT NOT NULL,
		seq INTEGER NOT NULL,
		sha TEXT NOT NULL,
		author TEXT,
		author_email TEXT,
		committed_at DATETIME,
		files TEXT NOT NULL,
		PRIMARY KEY (repo, seq),
		FOREIGN KEY (repo) REFERENCES snapshots(repo) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		repo TEXT NOT NULL,
		mode TEXT NOT NULL,
		unit_grouping TEXT NOT NULL,
		commits INTEGER NOT NULL,
		pairs INTEGER NOT NULL,
		cached INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		duration_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_repo ON runs(repo, started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}
