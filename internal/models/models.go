package models

import (
	"errors"
	"time"
)

// ErrPartialHistory is wrapped by commit sources that return fewer commits
// than they were asked for because some requests failed. The commits
// returned with it are still valid.
var ErrPartialHistory = errors.New("commit history incomplete")

// Repository identifies a GitHub repository as owner/name
type Repository struct {
	Owner string `json:"owner" yaml:"owner"`
	Name  string `json:"name" yaml:"name"`
}

// FullName returns owner/name
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// CommitRecord is a single commit as seen by the analysis: who authored it
// and which paths it touched. Records are produced by a commit source and
// never mutated afterwards.
type CommitRecord struct {
	SHA       string    `json:"sha" db:"sha"`
	Author    string    `json:"author" db:"author"`
	Email     string    `json:"email,omitempty" db:"author_email"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Files     []string  `json:"files"`
}
