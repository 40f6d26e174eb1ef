package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rohankatakam/devpairs/internal/models"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
)

// Snapshot is the commit list fetched for a repository at one point in time
type Snapshot struct {
	Repo       string                `json:"repo"`
	FetchedAt  time.Time             `json:"fetched_at"`
	MaxCommits int                   `json:"max_commits"` // 0 when fetched without a cap
	Commits    []models.CommitRecord `json:"commits"`
}

// Covers reports whether the snapshot holds everything a request capped at
// maxCommits would fetch. maxCommits <= 0 asks for the full history.
func (s *Snapshot) Covers(maxCommits int) bool {
	if s.MaxCommits <= 0 {
		return true
	}
	return maxCommits > 0 && s.MaxCommits >= maxCommits
}

// Run records one completed analysis
type Run struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Repo      string        `json:"repo" db:"repo"`
	Mode      string        `json:"mode" db:"mode"`
	Grouping  string        `json:"grouping" db:"unit_grouping"`
	Commits   int           `json:"commits" db:"commits"`
	Pairs     int           `json:"pairs" db:"pairs"`
	Cached    bool          `json:"cached" db:"cached"`
	StartedAt time.Time     `json:"started_at" db:"started_at"`
	Duration  time.Duration `json:"duration" db:"duration_ns"`
}

// Store defines the storage interface
type Store interface {
	// Snapshot operations
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
	LoadSnapshot(ctx context.Context, repo string) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context, repo string) error

	// Run history, newest first
	SaveRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, repo string, limit int) ([]*Run, error)

	// Close connection
	Close() error
}
