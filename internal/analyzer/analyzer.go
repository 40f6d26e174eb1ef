package analyzer

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/devpairs/internal/collab"
	"github.com/rohankatakam/devpairs/internal/models"
	"github.com/rohankatakam/devpairs/internal/storage"
)

// CommitSource yields the commits of a repository. *github.Client is the
// production implementation.
type CommitSource interface {
	FetchCommits(ctx context.Context, repo models.Repository, maxCommits int) ([]models.CommitRecord, error)
}

// Recorder receives analysis-level events. *metrics.Registry satisfies it.
type Recorder interface {
	CacheHit()
	PairsFound(mode string, n int)
}

type noopRecorder struct{}

func (noopRecorder) CacheHit()              {}
func (noopRecorder) PairsFound(string, int) {}

// Options tunes an Analyzer
type Options struct {
	CacheTTL time.Duration // Snapshots younger than this are reused; 0 disables reuse
	Recorder Recorder
}

// Analyzer runs the fetch, index and filter pipeline for one repository
type Analyzer struct {
	source   CommitSource
	store    storage.Store // nil disables caching and run history
	logger   *logrus.Logger
	recorder Recorder
	ttl      time.Duration
	now      func() time.Time
}

// New creates an analyzer. store may be nil.
func New(source CommitSource, store storage.Store, logger *logrus.Logger, opts Options) *Analyzer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}

	return &Analyzer{
		source:   source,
		store:    store,
		logger:   logger,
		recorder: opts.Recorder,
		ttl:      opts.CacheTTL,
		now:      time.Now,
	}
}

// Request describes one analysis
type Request struct {
	Repo       models.Repository
	MaxCommits int // <= 0 analyzes the full history
	Mode       collab.Mode
	Grouping   collab.Grouping
	Refresh    bool // Ignore any cached snapshot
}

// Result contains the outcome of an analysis
type Result struct {
	RunID    uuid.UUID
	Repo     models.Repository
	Mode     collab.Mode
	Grouping collab.Grouping
	Commits  int
	Pairs    []collab.RankedPair
	Cached   bool
	Partial  bool // The source failed to return some commits
	Duration time.Duration
}

// Run fetches (or reuses) the commits, builds the collaboration index and
// returns the frequent pairs. Storage problems are logged and never fail the
// run. A partial history is analyzed as is but never cached; source errors
// other than models.ErrPartialHistory fail the run.
func (a *Analyzer) Run(ctx context.Context, req Request) (*Result, error) {
	started := a.now()
	log := a.logger.WithFields(logrus.Fields{
		"repository": req.Repo.FullName(),
		"mode":       req.Mode.String(),
		"grouping":   req.Grouping.String(),
	})
	log.Debug("Starting analysis")

	commits, cached, partial, err := a.resolveCommits(ctx, req, started, log)
	if err != nil {
		return nil, err
	}

	idx := collab.BuildIndex(commits, req.Grouping)
	pairs := collab.FrequentPairs(idx, req.Mode)

	result := &Result{
		RunID:    uuid.New(),
		Repo:     req.Repo,
		Mode:     req.Mode,
		Grouping: req.Grouping,
		Commits:  len(commits),
		Pairs:    pairs,
		Cached:   cached,
		Partial:  partial,
		Duration: a.now().Sub(started),
	}

	a.recorder.PairsFound(req.Mode.String(), len(pairs))
	a.recordRun(ctx, result, started)

	log.WithFields(logrus.Fields{
		"run_id":  result.RunID.String(),
		"commits": result.Commits,
		"units":   len(idx),
		"pairs":   len(pairs),
		"cached":  cached,
		"partial": partial,
	}).Info("Analysis complete")

	return result, nil
}

func (a *Analyzer) resolveCommits(ctx context.Context, req Request, started time.Time, log *logrus.Entry) (commits []models.CommitRecord, cached, partial bool, err error) {
	key := req.Repo.FullName()

	if a.store != nil && !req.Refresh && a.ttl > 0 {
		if commits, ok := a.cachedCommits(ctx, key, req.MaxCommits, started); ok {
			a.recorder.CacheHit()
			return commits, true, false, nil
		}
	}

	commits, err = a.source.FetchCommits(ctx, req.Repo, req.MaxCommits)
	if err != nil {
		if !stderrors.Is(err, models.ErrPartialHistory) {
			return nil, false, false, err
		}
		log.WithError(err).WithField("commits", len(commits)).
			Warn("Commit history is incomplete, results may miss pairs and will not be cached")
		return commits, false, true, nil
	}

	if a.store != nil {
		snapshot := &storage.Snapshot{
			Repo:       key,
			FetchedAt:  started,
			MaxCommits: max(req.MaxCommits, 0),
			Commits:    commits,
		}
		if err := a.store.SaveSnapshot(ctx, snapshot); err != nil {
			a.logger.WithError(err).WithField("repository", key).Warn("Failed to cache commit snapshot")
		}
	}

	return commits, false, false, nil
}

// cachedCommits returns the snapshot commits when the snapshot is fresh and
// covers maxCommits, truncated to the cap.
func (a *Analyzer) cachedCommits(ctx context.Context, key string, maxCommits int, now time.Time) ([]models.CommitRecord, bool) {
	snapshot, err := a.store.LoadSnapshot(ctx, key)
	if err != nil {
		if !stderrors.Is(err, storage.ErrNotFound) {
			a.logger.WithError(err).WithField("repository", key).Warn("Failed to load commit snapshot")
		}
		return nil, false
	}

	age := now.Sub(snapshot.FetchedAt)
	if age >= a.ttl || !snapshot.Covers(maxCommits) {
		a.logger.WithFields(logrus.Fields{
			"repository":   key,
			"age":          age.Round(time.Second).String(),
			"snapshot_cap": snapshot.MaxCommits,
		}).Debug("Cached snapshot not usable")
		return nil, false
	}

	commits := snapshot.Commits
	if maxCommits > 0 && len(commits) > maxCommits {
		commits = commits[:maxCommits]
	}
	a.logger.WithFields(logrus.Fields{
		"repository": key,
		"commits":    len(commits),
		"age":        age.Round(time.Second).String(),
	}).Debug("Using cached commit snapshot")

	return commits, true
}

func (a *Analyzer) recordRun(ctx context.Context, result *Result, started time.Time) {
	if a.store == nil {
		return
	}

	run := &storage.Run{
		ID:        result.RunID,
		Repo:      result.Repo.FullName(),
		Mode:      result.Mode.String(),
		Grouping:  result.Grouping.String(),
		Commits:   result.Commits,
		Pairs:     len(result.Pairs),
		Cached:    result.Cached,
		StartedAt: started,
		Duration:  result.Duration,
	}
	if err := a.store.SaveRun(ctx, run); err != nil {
		a.logger.WithError(err).WithField("run_id", run.ID.String()).Warn("Failed to record run")
	}
}

// History lists recorded runs for a repository, newest first
func (a *Analyzer) History(ctx context.Context, repo models.Repository, limit int) ([]*storage.Run, error) {
	if a.store == nil {
		return []*storage.Run{}, nil
	}
	return a.store.ListRuns(ctx, repo.FullName(), limit)
}

// ClearCache drops the cached snapshot for a repository
func (a *Analyzer) ClearCache(ctx context.Context, repo models.Repository) error {
	if a.store == nil {
		return nil
	}
	return a.store.DeleteSnapshot(ctx, repo.FullName())
}
