package output

import "github.com/rohankatakam/devpairs/internal/collab"

// Report is everything a formatter needs to present one analysis
type Report struct {
	Repository string
	Mode       collab.Mode
	Grouping   collab.Grouping
	Commits    int // commits the index was built from
	Pairs      []collab.RankedPair
}

// Document is the machine-readable shape written by the json and yaml formats
type Document struct {
	Repository string      `json:"repository" yaml:"repository"`
	Mode       string      `json:"mode" yaml:"mode"`
	Grouping   string      `json:"grouping" yaml:"grouping"`
	Commits    int         `json:"commits" yaml:"commits"`
	Pairs      []PairEntry `json:"pairs" yaml:"pairs"`
}

// PairEntry is one developer pair in a Document
type PairEntry struct {
	First  string `json:"first" yaml:"first"`
	Second string `json:"second" yaml:"second"`
	Count  int    `json:"count" yaml:"count"`
}

// NewDocument converts a report; an empty pair list stays an empty array
func NewDocument(report *Report) Document {
	pairs := make([]PairEntry, 0, len(report.Pairs))
	for _, p := range report.Pairs {
		pairs = append(pairs, PairEntry{
			First:  p.Pair.First,
			Second: p.Pair.Second,
			Count:  p.Count,
		})
	}

	return Document{
		Repository: report.Repository,
		Mode:       report.Mode.String(),
		Grouping:   report.Grouping.String(),
		Commits:    report.Commits,
		Pairs:      pairs,
	}
}
