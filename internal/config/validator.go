package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rohankatakam/devpairs/internal/errors"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  ❌ %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠️  %s\n", warn))
		}
	}

	return sb.String()
}

// AsError converts a failed validation into a config error, or nil
func (vr *ValidationResult) AsError() error {
	if !vr.HasErrors() {
		return nil
	}
	return errors.ConfigError(strings.TrimSpace(vr.Error()))
}

// Validate checks the configuration for values the analysis cannot run with
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	if c.GitHub.RateLimit <= 0 {
		result.AddError("github.rate_limit must be positive (got %d)", c.GitHub.RateLimit)
	}
	if c.GitHub.MaxWorkers <= 0 {
		result.AddError("github.max_workers must be positive (got %d)", c.GitHub.MaxWorkers)
	} else if c.GitHub.MaxWorkers > 100 {
		result.AddWarning("github.max_workers=%d is likely to trip GitHub's secondary rate limits", c.GitHub.MaxWorkers)
	}
	if c.GitHub.PerPage <= 0 || c.GitHub.PerPage > 100 {
		result.AddError("github.per_page must be between 1 and 100 (got %d)", c.GitHub.PerPage)
	}
	if c.GitHub.BaseURL != "" {
		if u, err := url.Parse(c.GitHub.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			result.AddError("github.base_url %q is not an absolute URL", c.GitHub.BaseURL)
		}
	}

	switch strings.ToLower(c.Analysis.Mode) {
	case "both", "either":
	default:
		result.AddError("analysis.mode must be 'both' or 'either' (got %q)", c.Analysis.Mode)
	}
	switch strings.ToLower(c.Analysis.Grouping) {
	case "file", "module":
	default:
		result.AddError("analysis.grouping must be 'file' or 'module' (got %q)", c.Analysis.Grouping)
	}

	switch strings.ToLower(c.Storage.Type) {
	case "none", "":
	case "sqlite", "bolt":
		if c.Storage.Path == "" {
			result.AddError("storage.path is required for storage type %q", c.Storage.Type)
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			result.AddError("storage.postgres_dsn (or POSTGRES_DSN) is required for postgres storage")
		}
		switch c.Storage.PostgresDriver {
		case "", "pgx", "postgres":
		default:
			result.AddError("storage.postgres_driver must be 'pgx' or 'postgres' (got %q)", c.Storage.PostgresDriver)
		}
	default:
		result.AddError("storage.type must be one of sqlite, bolt, postgres, none (got %q)", c.Storage.Type)
	}

	if c.Cache.TTL < 0 {
		result.AddError("cache.ttl must not be negative (got %s)", c.Cache.TTL)
	}

	switch strings.ToLower(c.Output.Format) {
	case "table", "pretty", "json", "yaml":
	default:
		result.AddError("output.format must be one of table, pretty, json, yaml (got %q)", c.Output.Format)
	}

	if c.GitHub.Token == "" {
		result.AddWarning("no GitHub token configured; unauthenticated requests are limited to 60 per hour")
	}

	return result
}
