package models

import (
	"strings"

	"github.com/rohankatakam/devpairs/internal/errors"
)

// ParseRepository parses "owner/name". A trailing ".git" and a leading
// "https://github.com/" are accepted so URLs can be pasted as-is.
func ParseRepository(s string) (Repository, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "https://github.com/")
	trimmed = strings.TrimPrefix(trimmed, "http://github.com/")
	trimmed = strings.TrimPrefix(trimmed, "github.com/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	trimmed = strings.Trim(trimmed, "/")

	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, errors.ValidationErrorf("repository %q must look like owner/name", s)
	}

	return Repository{Owner: parts[0], Name: parts[1]}, nil
}
