package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	snapshotsBucket = "snapshots"
	runsBucket      = "runs"
)

// BoltStore implements storage on an embedded bbolt file. Values are JSON.
// Runs live in one nested bucket per repository.
type BoltStore struct {
	db     *bolt.DB
	logger *logrus.Logger
}

// NewBoltStore opens (or creates) the bbolt file at path
func NewBoltStore(path string, logger *logrus.Logger) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{snapshotsBucket, runsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	logger.WithField("path", path).Debug("Opened bolt store")
	return &BoltStore{db: db, logger: logger}, nil
}

// Close closes the database file
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(snapshotsBucket)).Put([]byte(snapshot.Repo), data)
	})
}

func (s *BoltStore) LoadSnapshot(ctx context.Context, repo string) (*Snapshot, error) {
	var snapshot *Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(snapshotsBucket)).Get([]byte(repo))
		if data == nil {
			return ErrNotFound
		}
		snapshot = &Snapshot{}
		return json.Unmarshal(data, snapshot)
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *BoltStore) DeleteSnapshot(ctx context.Context, repo string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(snapshotsBucket)).Delete([]byte(repo))
	})
}

// SaveRun stores the run under a key that sorts by start time
func (s *BoltStore) SaveRun(ctx context.Context, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	key := []byte(run.StartedAt.UTC().Format(time.RFC3339Nano) + "/" + run.ID.String())

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.Bucket([]byte(runsBucket)).CreateBucketIfNotExists([]byte(run.Repo))
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
}

func (s *BoltStore) ListRuns(ctx context.Context, repo string, limit int) ([]*Run, error) {
	runs := make([]*Run, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket)).Bucket([]byte(repo))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return err
			}
			runs = append(runs, &run)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
