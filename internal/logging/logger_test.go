package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"DEBUG":   logrus.DebugLevel,
		"warn":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"info":    logrus.InfoLevel,
		"":        logrus.InfoLevel,
		"bogus":   logrus.InfoLevel,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_WritesToConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "devpairs.log")

	logger, closer, err := New(Config{
		Level:      logrus.InfoLevel,
		Output:     &console,
		OutputFile: logFile,
		JSONFormat: true,
	})
	require.NoError(t, err)

	logger.WithField("repository", "octo/hello").Info("fetching commits")
	logger.Debug("suppressed")
	require.NoError(t, closer.Close())

	assert.Contains(t, console.String(), `"repository":"octo/hello"`)
	assert.NotContains(t, console.String(), "suppressed")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fetching commits")
}

func TestNew_RotatesOversizedFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "devpairs.log")
	require.NoError(t, os.WriteFile(logFile, []byte(strings.Repeat("x", 64)), 0644))

	_, closer, err := New(Config{
		Level:      logrus.InfoLevel,
		Output:     &bytes.Buffer{},
		OutputFile: logFile,
		MaxSize:    32,
	})
	require.NoError(t, err)
	defer closer.Close()

	backup, err := os.ReadFile(logFile + ".1")
	require.NoError(t, err)
	assert.Len(t, backup, 64)

	info, err := os.Stat(logFile)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, DefaultConfig(true).Level)
	assert.Equal(t, logrus.InfoLevel, DefaultConfig(false).Level)
}
