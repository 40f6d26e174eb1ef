package collab

import (
	"fmt"
	"strings"
)

// Grouping selects the unit of work authors are grouped by
type Grouping int

const (
	// GroupByFile uses the full file path as the unit
	GroupByFile Grouping = iota
	// GroupByModule uses the file's directory as the unit
	GroupByModule
)

func (g Grouping) String() string {
	switch g {
	case GroupByFile:
		return "file"
	case GroupByModule:
		return "module"
	default:
		return fmt.Sprintf("grouping(%d)", int(g))
	}
}

// ParseGrouping parses "file" or "module"
func ParseGrouping(s string) (Grouping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "file", "files":
		return GroupByFile, nil
	case "module", "modules", "dir", "directory":
		return GroupByModule, nil
	default:
		return GroupByFile, fmt.Errorf("unknown grouping %q (want file or module)", s)
	}
}

// Mode selects how strict the "most frequent partner" filter is
type Mode int

const (
	// ModeBoth keeps a pair only when it is the best (or tied-best)
	// collaboration for both developers.
	ModeBoth Mode = iota
	// ModeEither keeps a pair when it is the best collaboration for at
	// least one of the two developers.
	ModeEither
)

func (m Mode) String() string {
	switch m {
	case ModeBoth:
		return "both"
	case ModeEither:
		return "either"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "both" or "either"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both", "unique":
		return ModeBoth, nil
	case "either", "non-unique", "non_unique":
		return ModeEither, nil
	default:
		return ModeBoth, fmt.Errorf("unknown mode %q (want both or either)", s)
	}
}

// Index maps a unit (file path or module directory) to the set of authors
// who touched it.
type Index map[string]map[string]struct{}

// Authors returns the number of distinct authors recorded for a unit
func (idx Index) Authors(unit string) int {
	return len(idx[unit])
}

// Pair is an unordered pair of developers stored in canonical order
// (First < Second).
type Pair struct {
	First  string `json:"first" yaml:"first"`
	Second string `json:"second" yaml:"second"`
}

// NewPair returns the canonical pair for a and b
func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{First: a, Second: b}
}

func (p Pair) String() string {
	return p.First + " & " + p.Second
}

// RankedPair is a pair together with the number of units both developers share
type RankedPair struct {
	Pair  Pair `json:"pair" yaml:"pair"`
	Count int  `json:"count" yaml:"count"`
}
