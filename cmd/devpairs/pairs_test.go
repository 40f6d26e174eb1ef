package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/devpairs/internal/collab"
	"github.com/rohankatakam/devpairs/internal/config"
	"github.com/rohankatakam/devpairs/internal/output"
)

func TestResolvePairsSettings(t *testing.T) {
	cfg := config.Default()

	settings, err := resolvePairsSettings(pairsOptions{repository: "octo/hello"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "octo/hello", settings.repo.FullName())
	assert.Equal(t, collab.ModeBoth, settings.mode)
	assert.Equal(t, collab.GroupByFile, settings.grouping)
	assert.Equal(t, output.FormatTable, settings.format)

	settings, err = resolvePairsSettings(pairsOptions{
		repository: "https://github.com/octo/hello.git",
		nonUnique:  true,
		modules:    true,
		format:     "yaml",
	}, cfg)
	require.NoError(t, err)
	assert.Equal(t, collab.ModeEither, settings.mode)
	assert.Equal(t, collab.GroupByModule, settings.grouping)
	assert.Equal(t, output.FormatYAML, settings.format)

	cfg.Analysis.Mode = "either"
	cfg.Output.Format = "json"
	settings, err = resolvePairsSettings(pairsOptions{repository: "octo/hello"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, collab.ModeEither, settings.mode, "config supplies the default mode")
	assert.Equal(t, output.FormatJSON, settings.format)
}

func TestResolvePairsSettings_LocalClone(t *testing.T) {
	settings, err := resolvePairsSettings(pairsOptions{local: "/src/checkouts/widget"}, config.Default())
	require.NoError(t, err)
	assert.Equal(t, "local/widget", settings.repo.FullName())

	settings, err = resolvePairsSettings(pairsOptions{local: "/src/checkouts/widget", repository: "octo/widget"}, config.Default())
	require.NoError(t, err)
	assert.Equal(t, "octo/widget", settings.repo.FullName())
}

func TestResolvePairsSettings_Errors(t *testing.T) {
	cfg := config.Default()

	_, err := resolvePairsSettings(pairsOptions{}, cfg)
	assert.Error(t, err, "repository or local clone is required")

	_, err = resolvePairsSettings(pairsOptions{repository: "hello"}, cfg)
	assert.Error(t, err)

	_, err = resolvePairsSettings(pairsOptions{repository: "octo/hello", commitNum: -1}, cfg)
	assert.Error(t, err)

	_, err = resolvePairsSettings(pairsOptions{repository: "octo/hello", format: "csv"}, cfg)
	assert.Error(t, err)
}

// githubWithCommits serves a single page of commits keyed by sha
func githubWithCommits(t *testing.T, commits map[string][2]string) *httptest.Server {
	t.Helper()

	const prefix = "/repos/octo/hello/commits"
	mux := http.NewServeMux()
	mux.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		listed := make([]map[string]string, 0, len(commits))
		for sha := range commits {
			listed = append(listed, map[string]string{"sha": sha})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(listed)
	})
	mux.HandleFunc(prefix+"/", func(w http.ResponseWriter, r *http.Request) {
		sha := strings.TrimPrefix(r.URL.Path, prefix+"/")
		c, ok := commits[sha]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"sha":    sha,
			"commit": map[string]any{"author": map[string]any{"name": c[0]}},
			"files":  []map[string]string{{"filename": c[1]}},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestPairsCommand_EndToEnd(t *testing.T) {
	server := githubWithCommits(t, map[string][2]string{
		"s1": {"Alice", "pkg/a.go"},
		"s2": {"Bob", "pkg/a.go"},
		"s3": {"Carol", "pkg/b.go"},
	})

	t.Setenv("GITHUB_TOKEN", "ghp_test_token")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
github:
  base_url: %s
  rate_limit: 100
storage:
  type: none
logging:
  level: error
`, server.URL)), 0644))
	metricsPath := filepath.Join(dir, "devpairs.prom")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	rootCmd.SetArgs([]string{"pairs", "--config", cfgPath, "--metrics-file", metricsPath,
		"-r", "octo/hello", "--format", "table"})
	require.NoError(t, rootCmd.Execute())

	expected := "Developer Pair" + strings.Repeat(" ", 17) + " | Count\n" +
		strings.Repeat("-", 42) + "\n" +
		"Alice & Bob" + strings.Repeat(" ", 20) + " |     1\n"
	assert.Equal(t, expected, out.String())

	metricsData, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metricsData), "devpairs_commits_fetched_total 3")

	// module grouping puts all three authors in pkg
	out.Reset()
	rootCmd.SetArgs([]string{"pairs", "--config", cfgPath, "-r", "octo/hello",
		"--modules", "--format", "json"})
	require.NoError(t, rootCmd.Execute())

	var doc output.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "module", doc.Grouping)
	assert.Equal(t, 3, doc.Commits)
	assert.Equal(t, []output.PairEntry{
		{First: "Alice", Second: "Bob", Count: 1},
		{First: "Alice", Second: "Carol", Count: 1},
		{First: "Bob", Second: "Carol", Count: 1},
	}, doc.Pairs)
}
