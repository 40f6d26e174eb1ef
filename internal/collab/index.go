package collab

import (
	"path"

	"github.com/rohankatakam/devpairs/internal/models"
)

// UnitKey returns the unit a file path belongs to. With module grouping the
// unit is the file's directory; files at the repository root keep their own
// name.
func UnitKey(filePath string, grouping Grouping) string {
	if grouping != GroupByModule {
		return filePath
	}

	dir := path.Dir(filePath)
	if dir == "." || dir == "" {
		return filePath
	}
	return dir
}

// BuildIndex maps every unit touched by the commits to the set of authors
// who touched it. The result does not depend on commit order.
func BuildIndex(commits []models.CommitRecord, grouping Grouping) Index {
	idx := make(Index)

	for _, commit := range commits {
		for _, file := range commit.Files {
			unit := UnitKey(file, grouping)

			authors, ok := idx[unit]
			if !ok {
				authors = make(map[string]struct{})
				idx[unit] = authors
			}
			authors[commit.Author] = struct{}{}
		}
	}

	return idx
}
