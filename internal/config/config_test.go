package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	cfg.GitHub.Token = "ghp_example_token_value"

	result := cfg.Validate()
	assert.False(t, result.HasErrors(), result.Error())
	assert.Empty(t, result.Warnings)
	assert.NoError(t, result.AsError())
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_RATE_LIMIT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
github:
  rate_limit: 3
  max_workers: 8
analysis:
  mode: either
  grouping: module
storage:
  type: bolt
  path: /tmp/devpairs-test.db
cache:
  ttl: 90m
output:
  format: json
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.GitHub.RateLimit)
	assert.Equal(t, 8, cfg.GitHub.MaxWorkers)
	assert.Equal(t, 100, cfg.GitHub.PerPage, "unset keys keep their defaults")
	assert.Equal(t, "either", cfg.Analysis.Mode)
	assert.Equal(t, "module", cfg.Analysis.Grouping)
	assert.Equal(t, "bolt", cfg.Storage.Type)
	assert.Equal(t, "/tmp/devpairs-test.db", cfg.Storage.Path)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_from_env")
	t.Setenv("GITHUB_RATE_LIMIT", "2")
	t.Setenv("GITHUB_MAX_WORKERS", "4")
	t.Setenv("DEVPAIRS_STORAGE_TYPE", "none")
	t.Setenv("DEVPAIRS_CACHE_TTL_MINUTES", "5")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("github:\n  rate_limit: 9\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ghp_from_env", cfg.GitHub.Token)
	assert.Equal(t, 2, cfg.GitHub.RateLimit)
	assert.Equal(t, 4, cfg.GitHub.MaxWorkers)
	assert.Equal(t, "none", cfg.Storage.Type)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestSave_ThenLoad(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	cfg := Default()
	cfg.GitHub.Token = "ghp_should_not_be_written"
	cfg.Analysis.Mode = "either"
	cfg.Storage.Type = "postgres"
	cfg.Storage.PostgresDSN = "postgres://localhost/devpairs"
	cfg.Storage.PostgresDriver = "postgres"
	cfg.Cache.TTL = 15 * time.Minute

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ghp_should_not_be_written")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "either", loaded.Analysis.Mode)
	assert.Equal(t, "postgres", loaded.Storage.Type)
	assert.Equal(t, "postgres://localhost/devpairs", loaded.Storage.PostgresDSN)
	assert.Equal(t, "postgres", loaded.Storage.PostgresDriver)
	assert.Equal(t, 15*time.Minute, loaded.Cache.TTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero rate limit", func(c *Config) { c.GitHub.RateLimit = 0 }, "github.rate_limit"},
		{"zero workers", func(c *Config) { c.GitHub.MaxWorkers = 0 }, "github.max_workers"},
		{"page too large", func(c *Config) { c.GitHub.PerPage = 500 }, "github.per_page"},
		{"relative base url", func(c *Config) { c.GitHub.BaseURL = "api/v3" }, "github.base_url"},
		{"bad mode", func(c *Config) { c.Analysis.Mode = "any" }, "analysis.mode"},
		{"bad grouping", func(c *Config) { c.Analysis.Grouping = "package" }, "analysis.grouping"},
		{"bad storage", func(c *Config) { c.Storage.Type = "mongo" }, "storage.type"},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"postgres without dsn", func(c *Config) { c.Storage.Type = "postgres" }, "postgres_dsn"},
		{"unknown postgres driver", func(c *Config) {
			c.Storage.Type = "postgres"
			c.Storage.PostgresDSN = "postgres://localhost/devpairs"
			c.Storage.PostgresDriver = "mysql"
		}, "postgres_driver"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl"},
		{"bad format", func(c *Config) { c.Output.Format = "csv" }, "output.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.GitHub.Token = "ghp_example_token_value"
			tt.mutate(cfg)

			result := cfg.Validate()
			require.True(t, result.HasErrors())
			assert.Contains(t, result.Error(), tt.wantErr)
			assert.Error(t, result.AsError())
		})
	}
}

func TestValidate_WarnsWithoutToken(t *testing.T) {
	cfg := Default()
	cfg.GitHub.MaxWorkers = 200

	result := cfg.Validate()
	assert.False(t, result.HasErrors())
	assert.Len(t, result.Warnings, 2)
}
