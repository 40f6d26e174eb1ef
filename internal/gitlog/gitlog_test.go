package gitlog

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/devpairs/internal/errors"
	"github.com/rohankatakam/devpairs/internal/models"
)

func header(sha, author, email, date string) string {
	return strings.Join([]string{headerMarker, sha, author, email, date}, fieldSep)
}

func TestParseLog(t *testing.T) {
	output := header("abc123", "John | Doe", "john@example.com", "2025-09-15T10:00:00+02:00") + "\n" +
		"10\t5\tsrc/auth.ts\n" +
		"3\t1\tsrc/database.ts\n" +
		"\n" +
		header("merge1", "Jane Smith", "jane@example.com", "2025-09-16T14:30:00Z") + "\n" +
		"\n" +
		header("def456", "Jane Smith", "jane@example.com", "2025-09-16T14:31:00Z") + "\n" +
		"-\t-\tassets/logo.png\n" +
		"25\t0\tdocs/with space.md\n"

	commits, err := parseLog(output)
	require.NoError(t, err)
	require.Len(t, commits, 3)

	assert.Equal(t, "abc123", commits[0].SHA)
	assert.Equal(t, "John | Doe", commits[0].Author)
	assert.Equal(t, "john@example.com", commits[0].Email)
	assert.Equal(t, []string{"src/auth.ts", "src/database.ts"}, commits[0].Files)
	assert.Equal(t, 8, commits[0].Timestamp.UTC().Hour())

	assert.Equal(t, "merge1", commits[1].SHA)
	assert.NotNil(t, commits[1].Files)
	assert.Empty(t, commits[1].Files)

	assert.Equal(t, []string{"assets/logo.png", "docs/with space.md"}, commits[2].Files)
}

func TestParseLog_Empty(t *testing.T) {
	commits, err := parseLog("")
	require.NoError(t, err)
	assert.NotNil(t, commits)
	assert.Empty(t, commits)
}

func TestParseLog_SkipsMalformedHeader(t *testing.T) {
	output := headerMarker + fieldSep + "only-sha\n" +
		"1\t1\tignored.go\n" +
		header("ok1", "Alice", "a@example.com", "2025-01-01T00:00:00Z") + "\n" +
		"1\t1\tkept.go\n"

	commits, err := parseLog(output)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, []string{"kept.go"}, commits[0].Files)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_COMMITTER_NAME=ci",
		"GIT_COMMITTER_EMAIL=ci@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func commitFile(t *testing.T, dir, author, file string) {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(author + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	git(t, dir, "add", file)
	git(t, dir, "-c", "commit.gpgsign=false", "commit", "-q", "-m", "change "+file,
		"--author", author+" <"+strings.ToLower(author)+"@example.com>")
}

func TestSource_FetchCommits(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	git(t, dir, "init", "-q")
	commitFile(t, dir, "Alice", "src/a.go")
	commitFile(t, dir, "Bob", "src/a.go")
	commitFile(t, dir, "Carol", "README.md")

	source := NewSource(dir, quietLogger())
	repo := models.Repository{Owner: "local", Name: "demo"}

	commits, err := source.FetchCommits(context.Background(), repo, 0)
	require.NoError(t, err)
	require.Len(t, commits, 3)
	assert.Equal(t, "Carol", commits[0].Author, "newest first")
	assert.Equal(t, []string{"README.md"}, commits[0].Files)
	assert.Equal(t, "alice@example.com", commits[2].Email)

	capped, err := source.FetchCommits(context.Background(), repo, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestSource_NonASCIIPathsAreNotQuoted(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	git(t, dir, "init", "-q")
	git(t, dir, "config", "core.quotePath", "true")
	commitFile(t, dir, "Alice", "docs/café.py")
	commitFile(t, dir, "Bob", "naïve notes.md")

	commits, err := NewSource(dir, quietLogger()).
		FetchCommits(context.Background(), models.Repository{Owner: "local", Name: "demo"}, 0)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, []string{"naïve notes.md"}, commits[0].Files)
	assert.Equal(t, []string{"docs/café.py"}, commits[1].Files)
}

func TestSource_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	source := NewSource(t.TempDir(), quietLogger())
	_, err := source.FetchCommits(context.Background(), models.Repository{Owner: "local", Name: "x"}, 0)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeExternal, errors.GetType(err))
}
