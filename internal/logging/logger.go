package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config holds logger configuration
type Config struct {
	Level      logrus.Level
	Output     io.Writer // Console destination (default: stderr)
	OutputFile string    // Path to log file (empty = console only)
	MaxSize    int64     // Max size in bytes before rotation (default: 10MB)
	MaxBackups int       // Number of old log files to keep (default: 3)
	JSONFormat bool
}

// fileSink owns the optional log file so it can be closed on shutdown
type fileSink struct {
	mu   sync.Mutex
	file *os.File
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// New builds a logrus logger from the given configuration.
// The returned closer releases the log file, if any.
func New(config Config) (*logrus.Logger, io.Closer, error) {
	if config.MaxSize == 0 {
		config.MaxSize = 10 * 1024 * 1024 // 10MB
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = 3
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}

	logger := logrus.New()
	logger.SetLevel(config.Level)

	if config.JSONFormat {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	sink := &fileSink{}
	writers := []io.Writer{config.Output}

	if config.OutputFile != "" {
		dir := filepath.Dir(config.OutputFile)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}

		if err := rotateIfNeeded(config); err != nil {
			return nil, nil, fmt.Errorf("failed to rotate logs: %w", err)
		}

		file, err := os.OpenFile(config.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", config.OutputFile, err)
		}
		sink.file = file
		writers = append(writers, file)
	}

	logger.SetOutput(io.MultiWriter(writers...))
	return logger, sink, nil
}

// rotateIfNeeded shifts log.N -> log.N+1 and log -> log.1 once the file
// reaches MaxSize. The oldest backup beyond MaxBackups is overwritten.
func rotateIfNeeded(config Config) error {
	info, err := os.Stat(config.OutputFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	if info.Size() < config.MaxSize {
		return nil
	}

	for i := config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", config.OutputFile, i)
		newPath := fmt.Sprintf("%s.%d", config.OutputFile, i+1)
		if _, err := os.Stat(oldPath); err == nil {
			os.Rename(oldPath, newPath)
		}
	}

	backupPath := fmt.Sprintf("%s.1", config.OutputFile)
	if err := os.Rename(config.OutputFile, backupPath); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	return nil
}

// ParseLevel maps a config string to a logrus level, defaulting to info
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig(verbose bool) Config {
	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}

	return Config{
		Level:      level,
		MaxSize:    10 * 1024 * 1024,
		MaxBackups: 3,
	}
}
