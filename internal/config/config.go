package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	GitHub   GitHubConfig   `mapstructure:"github" yaml:"github"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

type GitHubConfig struct {
	Token      string `mapstructure:"token" yaml:"token"`
	RateLimit  int    `mapstructure:"rate_limit" yaml:"rate_limit"`   // Requests per second
	MaxWorkers int    `mapstructure:"max_workers" yaml:"max_workers"` // Concurrent commit detail fetches
	PerPage    int    `mapstructure:"per_page" yaml:"per_page"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"` // GitHub Enterprise API root, empty for github.com
}

type AnalysisConfig struct {
	Mode     string `mapstructure:"mode" yaml:"mode"`         // "both", "either"
	Grouping string `mapstructure:"grouping" yaml:"grouping"` // "file", "module"
}

type StorageConfig struct {
	Type           string `mapstructure:"type" yaml:"type"` // "sqlite", "bolt", "postgres", "none"
	Path           string `mapstructure:"path" yaml:"path"`
	PostgresDSN    string `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`
	PostgresDriver string `mapstructure:"postgres_driver" yaml:"postgres_driver"` // "pgx", "postgres" (lib/pq)
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // "table", "pretty", "json", "yaml"
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		GitHub: GitHubConfig{
			RateLimit:  10, // 10 requests per second
			MaxWorkers: 20,
			PerPage:    100,
		},
		Analysis: AnalysisConfig{
			Mode:     "both",
			Grouping: "file",
		},
		Storage: StorageConfig{
			Type:           "sqlite",
			Path:           filepath.Join(homeDir, ".devpairs", "cache.db"),
			PostgresDriver: "pgx",
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Output: OutputConfig{
			Format: "table",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	setDefaults(v, cfg)

	v.SetEnvPrefix("DEVPAIRS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".devpairs")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".devpairs"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.Storage.Path = expandPath(cfg.Storage.Path)

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("github.rate_limit", cfg.GitHub.RateLimit)
	v.SetDefault("github.max_workers", cfg.GitHub.MaxWorkers)
	v.SetDefault("github.per_page", cfg.GitHub.PerPage)
	v.SetDefault("analysis.mode", cfg.Analysis.Mode)
	v.SetDefault("analysis.grouping", cfg.Analysis.Grouping)
	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.postgres_driver", cfg.Storage.PostgresDriver)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// loadEnvFiles loads .env files in order of precedence. godotenv never
// overrides variables that are already set, so earlier files win.
func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".devpairs", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if rateLimit := os.Getenv("GITHUB_RATE_LIMIT"); rateLimit != "" {
		if rate, err := strconv.Atoi(rateLimit); err == nil {
			cfg.GitHub.RateLimit = rate
		}
	}
	if workers := os.Getenv("GITHUB_MAX_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			cfg.GitHub.MaxWorkers = n
		}
	}

	if storageType := os.Getenv("DEVPAIRS_STORAGE_TYPE"); storageType != "" {
		cfg.Storage.Type = storageType
	}
	if path := os.Getenv("DEVPAIRS_STORAGE_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Storage.PostgresDSN = dsn
	}

	if ttl := os.Getenv("DEVPAIRS_CACHE_TTL_MINUTES"); ttl != "" {
		if minutes, err := strconv.Atoi(ttl); err == nil {
			cfg.Cache.TTL = time.Duration(minutes) * time.Minute
		}
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves configuration to file. The token is never written; use the
// keychain or GITHUB_TOKEN instead.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("github.rate_limit", c.GitHub.RateLimit)
	v.Set("github.max_workers", c.GitHub.MaxWorkers)
	v.Set("github.per_page", c.GitHub.PerPage)
	v.Set("github.base_url", c.GitHub.BaseURL)
	v.Set("analysis.mode", c.Analysis.Mode)
	v.Set("analysis.grouping", c.Analysis.Grouping)
	v.Set("storage.type", c.Storage.Type)
	v.Set("storage.path", c.Storage.Path)
	v.Set("storage.postgres_dsn", c.Storage.PostgresDSN)
	v.Set("storage.postgres_driver", c.Storage.PostgresDriver)
	v.Set("cache.ttl", c.Cache.TTL.String())
	v.Set("output.format", c.Output.Format)
	v.Set("logging.level", c.Logging.Level)
	v.Set("logging.file", c.Logging.File)
	v.Set("logging.json", c.Logging.JSON)
	v.Set("metrics.textfile", c.Metrics.Textfile)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
