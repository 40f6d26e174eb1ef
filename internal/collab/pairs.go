package collab

import (
	"sort"
)

// CountPairs counts, for every unordered pair of distinct authors, the number
// of units they both touched. A unit with k authors adds C(k,2) increments.
func CountPairs(idx Index) map[Pair]int {
	counts := make(map[Pair]int)

	for _, set := range idx {
		if len(set) < 2 {
			continue
		}

		authors := make([]string, 0, len(set))
		for author := range set {
			authors = append(authors, author)
		}

		for i := 0; i < len(authors); i++ {
			for j := i + 1; j < len(authors); j++ {
				counts[NewPair(authors[i], authors[j])]++
			}
		}
	}

	return counts
}

// Rank orders pairs by count descending. Pairs with equal counts are ordered
// by name so the output is stable across runs.
func Rank(counts map[Pair]int) []RankedPair {
	ranked := make([]RankedPair, 0, len(counts))
	for pair, count := range counts {
		ranked = append(ranked, RankedPair{Pair: pair, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if ranked[i].Pair.First != ranked[j].Pair.First {
			return ranked[i].Pair.First < ranked[j].Pair.First
		}
		return ranked[i].Pair.Second < ranked[j].Pair.Second
	})

	return ranked
}

// FilterFrequent walks ranked pairs tier by tier (a tier is every pair with
// the same count) and keeps the pairs that are each developer's best
// collaboration.
//
// An author becomes marked once a tier it appeared in has been fully walked,
// so a marked author always has a partner with a strictly higher count.
// ModeBoth keeps a pair when neither author is marked; ModeEither keeps it
// when at most one is. ranked must be sorted by count descending.
func FilterFrequent(ranked []RankedPair, mode Mode) []RankedPair {
	result := make([]RankedPair, 0, len(ranked))

	marked := make(map[string]struct{})
	pending := make(map[string]struct{})
	prevCount := 0

	for _, rp := range ranked {
		if rp.Count != prevCount {
			for author := range pending {
				marked[author] = struct{}{}
			}
			pending = make(map[string]struct{})
			prevCount = rp.Count
		}

		matched := 0
		for _, author := range [2]string{rp.Pair.First, rp.Pair.Second} {
			if _, ok := marked[author]; ok {
				matched++
			} else {
				pending[author] = struct{}{}
			}
		}

		if keep(mode, matched) {
			result = append(result, rp)
		}
	}

	return result
}

func keep(mode Mode, matched int) bool {
	if mode == ModeEither {
		return matched <= 1
	}
	return matched == 0
}

// FrequentPairs counts, ranks and filters the pairs of an index
func FrequentPairs(idx Index, mode Mode) []RankedPair {
	return FilterFrequent(Rank(CountPairs(idx)), mode)
}
