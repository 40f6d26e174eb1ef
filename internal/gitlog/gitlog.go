package gitlog

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/devpairs/internal/errors"
	"github.com/rohankatakam/devpairs/internal/models"
)

// Header lines start with this marker so they cannot be confused with
// numstat lines; fields are separated by the ASCII unit separator.
const (
	headerMarker = "\x1ecommit"
	fieldSep     = "\x1f"
)

// Source reads commits from a local clone with git log. It satisfies the
// same interface as the GitHub client.
type Source struct {
	repoPath string
	gitBin   string
	logger   *logrus.Logger
}

// NewSource creates a source for the clone at repoPath
func NewSource(repoPath string, logger *logrus.Logger) *Source {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Source{repoPath: repoPath, gitBin: "git", logger: logger}
}

// FetchCommits runs git log in the clone, newest first. repo is only used
// for logging; maxCommits <= 0 reads the whole history.
func (s *Source) FetchCommits(ctx context.Context, repo models.Repository, maxCommits int) ([]models.CommitRecord, error) {
	// core.quotePath=false keeps non-ASCII paths verbatim instead of C-quoted
	args := []string{
		"-c", "core.quotePath=false",
		"log",
		"--numstat",
		"--no-renames",
		"--pretty=format:%x1ecommit%x1f%H%x1f%an%x1f%ae%x1f%aI",
	}
	if maxCommits > 0 {
		args = append(args, "-n", strconv.Itoa(maxCommits))
	}

	cmd := exec.CommandContext(ctx, s.gitBin, args...)
	cmd.Dir = s.repoPath
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, errors.ExternalErrorf(err, "git log failed in %s", s.repoPath).
			WithContext("stderr", stderr)
	}

	commits, err := parseLog(string(out))
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"repository": repo.FullName(),
		"path":       s.repoPath,
		"commits":    len(commits),
	}).Debug("Read local git history")

	return commits, nil
}

// parseLog parses git log --numstat output produced with the header format
// above. Commits without file changes (merges) keep an empty file list.
func parseLog(output string) ([]models.CommitRecord, error) {
	commits := make([]models.CommitRecord, 0)
	var current *models.CommitRecord

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, headerMarker) {
			if current != nil {
				commits = append(commits, *current)
			}

			parts := strings.Split(line, fieldSep)
			if len(parts) != 5 {
				current = nil
				continue // Skip malformed lines
			}

			timestamp, _ := time.Parse(time.RFC3339, parts[4])
			current = &models.CommitRecord{
				SHA:       parts[1],
				Author:    parts[2],
				Email:     parts[3],
				Timestamp: timestamp,
				Files:     []string{},
			}
			continue
		}

		if current == nil || line == "" {
			continue
		}

		// additions<TAB>deletions<TAB>path; binary files report "-"
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) == 3 && fields[2] != "" {
			current.Files = append(current.Files, fields[2])
		}
	}

	if current != nil {
		commits = append(commits, *current)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning git log output: %w", err)
	}

	return commits, nil
}
