package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/devpairs/internal/analyzer"
	"github.com/rohankatakam/devpairs/internal/models"
	"github.com/rohankatakam/devpairs/internal/storage"
)

var (
	historyRepo  string
	historyLimit int
	cacheRepo    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous analyses of a repository",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local commit cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cached commit snapshot of a repository",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	historyCmd.Flags().StringVarP(&historyRepo, "repository", "r", "", "repository (owner/name)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum number of runs to show (0 for all)")
	historyCmd.MarkFlagRequired("repository")

	cacheClearCmd.Flags().StringVarP(&cacheRepo, "repository", "r", "", "repository (owner/name)")
	cacheClearCmd.MarkFlagRequired("repository")
	cacheCmd.AddCommand(cacheClearCmd)
}

// openAnalyzer opens the configured store for commands that only read or
// clear it. The returned analyzer has no commit source.
func openAnalyzer() (*analyzer.Analyzer, func(), error) {
	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		return nil, nil, nil
	}
	return analyzer.New(nil, store, logger, analyzer.Options{}), func() { store.Close() }, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	repo, err := models.ParseRepository(historyRepo)
	if err != nil {
		return err
	}

	a, closeStore, err := openAnalyzer()
	if err != nil {
		return err
	}
	if a == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Run history is disabled (storage.type is none)")
		return nil
	}
	defer closeStore()

	runs, err := a.History(cmd.Context(), repo, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No runs recorded for %s\n", repo.FullName())
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Started", "Mode", "Grouping", "Commits", "Pairs", "Cached", "Took"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID.String()[:8],
			run.StartedAt.Local().Format(time.DateTime),
			run.Mode,
			run.Grouping,
			run.Commits,
			run.Pairs,
			run.Cached,
			run.Duration.Round(time.Millisecond),
		})
	}
	t.Render()
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	repo, err := models.ParseRepository(cacheRepo)
	if err != nil {
		return err
	}

	a, closeStore, err := openAnalyzer()
	if err != nil {
		return err
	}
	if a == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Caching is disabled (storage.type is none)")
		return nil
	}
	defer closeStore()

	if err := a.ClearCache(cmd.Context(), repo); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared cached commits for %s\n", repo.FullName())
	return nil
}
