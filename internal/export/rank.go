// Package export ranks the class name table and writes it out to sinks.
package export

import (
	"cmp"
	"slices"
)

// Entry is one row of the ranking.
type Entry struct {
	Name  string
	Count int
}

// Rank sorts counts by count descending, then name ascending, and returns
// the full list plus its first min(topN, len) entries.
func Rank(counts map[string]int, topN int) (all, top []Entry) {
	all = make([]Entry, 0, len(counts))
	for name, n := range counts {
		all = append(all, Entry{Name: name, Count: n})
	}
	slices.SortFunc(all, func(a, b Entry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	if topN < 0 {
		topN = 0
	}
	return all, all[:min(topN, len(all))]
}
