package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/devpairs/internal/models"
)

// sqlStore implements Store over any sqlx connection. Queries are written
// with ? placeholders and rebound for the driver.
type sqlStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

type snapshotRow struct {
	Repo       string    `db:"repo"`
	FetchedAt  time.Time `db:"fetched_at"`
	MaxCommits int       `db:"max_commits"`
}

type commitRow struct {
	SHA       string    `db:"sha"`
	Author    string    `db:"author"`
	Email     string    `db:"author_email"`
	Timestamp time.Time `db:"committed_at"`
	Files     string    `db:"files"`
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM snapshot_commits WHERE repo = ?`), snapshot.Repo); err != nil {
		return fmt.Errorf("clear snapshot commits: %w", err)
	}

	upsert := `
		INSERT INTO snapshots (repo, fetched_at, max_commits)
		VALUES (?, ?, ?)
		ON CONFLICT (repo) DO UPDATE SET
			fetched_at = EXCLUDED.fetched_at,
			max_commits = EXCLUDED.max_commits
	`
	if _, err := tx.ExecContext(ctx, tx.Rebind(upsert),
		snapshot.Repo, snapshot.FetchedAt.UTC(), snapshot.MaxCommits); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	insert := tx.Rebind(`
		INSERT INTO snapshot_commits
		(repo, seq, sha, author, author_email, committed_at, files)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	for i, commit := range snapshot.Commits {
		files, err := json.Marshal(commit.Files)
		if err != nil {
			return fmt.Errorf("encode files of %s: %w", commit.SHA, err)
		}
		if _, err := tx.ExecContext(ctx, insert,
			snapshot.Repo, i, commit.SHA, commit.Author, commit.Email,
			commit.Timestamp.UTC(), string(files)); err != nil {
			return fmt.Errorf("save commit %s: %w", commit.SHA, err)
		}
	}

	return tx.Commit()
}

func (s *sqlStore) LoadSnapshot(ctx context.Context, repo string) (*Snapshot, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind(`SELECT repo, fetched_at, max_commits FROM snapshots WHERE repo = ?`), repo)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var rows []commitRow
	query := `
		SELECT sha, author, author_email, committed_at, files
		FROM snapshot_commits WHERE repo = ? ORDER BY seq
	`
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), repo); err != nil {
		return nil, fmt.Errorf("load snapshot commits: %w", err)
	}

	commits := make([]models.CommitRecord, 0, len(rows))
	for _, r := range rows {
		var files []string
		if err := json.Unmarshal([]byte(r.Files), &files); err != nil {
			return nil, fmt.Errorf("decode files of %s: %w", r.SHA, err)
		}
		commits = append(commits, models.CommitRecord{
			SHA:       r.SHA,
			Author:    r.Author,
			Email:     r.Email,
			Timestamp: r.Timestamp,
			Files:     files,
		})
	}

	return &Snapshot{
		Repo:       row.Repo,
		FetchedAt:  row.FetchedAt,
		MaxCommits: row.MaxCommits,
		Commits:    commits,
	}, nil
}

func (s *sqlStore) DeleteSnapshot(ctx context.Context, repo string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM snapshot_commits WHERE repo = ?`), repo); err != nil {
		return fmt.Errorf("delete snapshot commits: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM snapshots WHERE repo = ?`), repo); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}

	return tx.Commit()
}

func (s *sqlStore) SaveRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO runs
		(id, repo, mode, unit_grouping, commits, pairs, cached, started_at, duration_ns)
		VALUES (:id, :repo, :mode, :unit_grouping, :commits, :pairs, :cached, :started_at, :duration_ns)
	`
	stored := *run
	stored.StartedAt = run.StartedAt.UTC()

	if _, err := s.db.NamedExecContext(ctx, query, &stored); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *sqlStore) ListRuns(ctx context.Context, repo string, limit int) ([]*Run, error) {
	query := `
		SELECT id, repo, mode, unit_grouping, commits, pairs, cached, started_at, duration_ns
		FROM runs WHERE repo = ? ORDER BY started_at DESC
	`
	args := []interface{}{repo}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	runs := make([]*Run, 0)
	if err := s.db.SelectContext(ctx, &runs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
