package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/devpairs/internal/analyzer"
	"github.com/rohankatakam/devpairs/internal/collab"
	"github.com/rohankatakam/devpairs/internal/config"
	"github.com/rohankatakam/devpairs/internal/errors"
	"github.com/rohankatakam/devpairs/internal/github"
	"github.com/rohankatakam/devpairs/internal/gitlog"
	"github.com/rohankatakam/devpairs/internal/metrics"
	"github.com/rohankatakam/devpairs/internal/models"
	"github.com/rohankatakam/devpairs/internal/output"
	"github.com/rohankatakam/devpairs/internal/storage"
)

type pairsOptions struct {
	repository string
	token      string
	commitNum  int
	nonUnique  bool
	modules    bool
	format     string
	refresh    bool
	local      string
}

var pairsOpts pairsOptions

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Report the developer pairs that most often touch the same code",
	Long: `Fetch the repository's commits, group the touched paths into units (files,
or directories with --modules) and report each developer's most frequent
partner.

By default a pair is reported only when it is the best collaboration for
both developers. --non-unique-dev reports it when it is the best for either.`,
	Example: `  devpairs pairs -r golang/go --commit-num 500
  devpairs pairs -r octo/hello --modules --non-unique-dev --format json`,
	Args: cobra.NoArgs,
	RunE: runPairs,
}

func init() {
	f := pairsCmd.Flags()
	f.StringVarP(&pairsOpts.repository, "repository", "r", "", "repository to analyze (owner/name)")
	f.StringVarP(&pairsOpts.token, "token", "t", "", "GitHub API token (default: GITHUB_TOKEN, keychain, then config)")
	f.IntVar(&pairsOpts.commitNum, "commit-num", 0, "number of commits to analyze (default: all)")
	f.BoolVar(&pairsOpts.nonUnique, "non-unique-dev", false, "keep pairs that are the best match for at least one developer")
	f.BoolVar(&pairsOpts.modules, "modules", false, "group files by directory instead of by file")
	f.StringVarP(&pairsOpts.format, "format", "f", "", "output format: table, pretty, json, yaml (default from config)")
	f.BoolVar(&pairsOpts.refresh, "refresh", false, "ignore any cached commit snapshot")
	f.StringVar(&pairsOpts.local, "local", "", "read commits from a local clone with git log instead of the GitHub API")
}

// pairsSettings is the analysis shape after flags are layered over config
type pairsSettings struct {
	repo     models.Repository
	mode     collab.Mode
	grouping collab.Grouping
	format   output.Format
}

func resolvePairsSettings(opts pairsOptions, cfg *config.Config) (*pairsSettings, error) {
	var repo models.Repository
	switch {
	case opts.repository != "":
		parsed, err := models.ParseRepository(opts.repository)
		if err != nil {
			return nil, err
		}
		repo = parsed
	case opts.local != "":
		abs, err := filepath.Abs(opts.local)
		if err != nil {
			return nil, fmt.Errorf("resolve --local path: %w", err)
		}
		repo = models.Repository{Owner: "local", Name: filepath.Base(abs)}
	default:
		return nil, errors.ValidationErrorf("--repository is required (or --local for a clone on disk)")
	}
	if opts.commitNum < 0 {
		return nil, errors.ValidationErrorf("--commit-num must not be negative (got %d)", opts.commitNum)
	}

	mode, err := collab.ParseMode(cfg.Analysis.Mode)
	if err != nil {
		return nil, err
	}
	if opts.nonUnique {
		mode = collab.ModeEither
	}

	grouping, err := collab.ParseGrouping(cfg.Analysis.Grouping)
	if err != nil {
		return nil, err
	}
	if opts.modules {
		grouping = collab.GroupByModule
	}

	formatName := cfg.Output.Format
	if opts.format != "" {
		formatName = opts.format
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	return &pairsSettings{repo: repo, mode: mode, grouping: grouping, format: format}, nil
}

func runPairs(cmd *cobra.Command, args []string) error {
	settings, err := resolvePairsSettings(pairsOpts, cfg)
	if err != nil {
		return err
	}

	if pairsOpts.local != "" {
		return analyze(cmd, settings, gitlog.NewSource(pairsOpts.local, logger), nil, nil)
	}

	km := config.NewKeyringManager(logger)
	token, source := km.ResolveToken(pairsOpts.token, cfg)
	cfg.GitHub.Token = token
	logger.WithField("source", string(source)).Debug("Resolved GitHub token")

	validation := cfg.Validate()
	for _, warning := range validation.Warnings {
		logger.Warn(warning)
	}
	if err := validation.AsError(); err != nil {
		return err
	}

	registry := metrics.NewRegistry()

	client, err := github.NewClient(github.Options{
		Token:      cfg.GitHub.Token,
		RateLimit:  cfg.GitHub.RateLimit,
		MaxWorkers: cfg.GitHub.MaxWorkers,
		PerPage:    cfg.GitHub.PerPage,
		BaseURL:    cfg.GitHub.BaseURL,
		Recorder:   registry,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		logger.WithError(err).Warn("Commit cache unavailable, continuing without it")
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	return analyze(cmd, settings, client, store, registry)
}

// analyze runs the pipeline over source and prints the report. store and
// registry may be nil.
func analyze(cmd *cobra.Command, settings *pairsSettings, source analyzer.CommitSource, store storage.Store, registry *metrics.Registry) error {
	if registry == nil {
		registry = metrics.NewRegistry()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := analyzer.New(source, store, logger, analyzer.Options{
		CacheTTL: cfg.Cache.TTL,
		Recorder: registry,
	})
	result, err := a.Run(ctx, analyzer.Request{
		Repo:       settings.repo,
		MaxCommits: pairsOpts.commitNum,
		Mode:       settings.mode,
		Grouping:   settings.grouping,
		Refresh:    pairsOpts.refresh,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := &output.Report{
		Repository: result.Repo.FullName(),
		Mode:       result.Mode,
		Grouping:   result.Grouping,
		Commits:    result.Commits,
		Pairs:      result.Pairs,
	}
	if err := output.NewFormatter(settings.format).Format(report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.Metrics.Textfile != "" {
		if err := registry.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.WithError(err).Warn("Failed to write metrics")
		}
	}

	return nil
}
