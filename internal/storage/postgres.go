package storage

import (
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// PostgreSQL drivers registered with database/sql
const (
	DriverPgx = "pgx"
	DriverPq  = "postgres"
)

// PostgresStore implements storage using PostgreSQL, for a cache shared
// between machines
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore creates a new PostgreSQL storage. driver selects pgx
// (default) or lib/pq.
func NewPostgresStore(dsn, driver string, logger *logrus.Logger) (*PostgresStore, error) {
	if driver == "" {
		driver = DriverPgx
	}
	if driver != DriverPgx && driver != DriverPq {
		return nil, fmt.Errorf("unsupported postgres driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &PostgresStore{sqlStore{db: db, logger: logger}}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.WithField("driver", driver).Debug("Opened PostgreSQL store")
	return store, nil
}

func (s *PostgresStore) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			repo TEXT PRIMARY KEY,
			fetched_at TIMESTAMPTZ NOT NULL,
			max_commits INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS snapshot_commits (
			repo TEXT NOT NULL REFERENCES snapshots(repo) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			sha TEXT NOT NULL,
			author TEXT,
			author_email TEXT,
			committed_at TIMESTAMPTZ,
			files TEXT NOT NULL,
			PRIMARY KEY (repo, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			repo TEXT NOT NULL,
			mode TEXT NOT NULL,
			unit_grouping TEXT NOT NULL,
			commits INTEGER NOT NULL,
			pairs INTEGER NOT NULL,
			cached BOOLEAN NOT NULL DEFAULT FALSE,
			started_at TIMESTAMPTZ NOT NULL,
			duration_ns BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_repo ON runs(repo, started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
