package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"
)

// Result is a filter match with metadata for highlighting
type Result struct {
	Index          int   // Position in the source titles
	MatchedIndexes []int // Character positions that matched
	Score          int   // Rank score (lower is better)
}

// Index implements sahilm/fuzzy.Source over pre-lowered titles
type Index struct {
	lowerTitles []string
}

// NewIndex builds an index for repeated filtering of the same titles
func NewIndex(titles []string) *Index {
	lower := make([]string, len(titles))
	for i, t := range titles {
		lower[i] = strings.ToLower(t)
	}
	return &Index{lowerTitles: lower}
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of titles (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.lowerTitles) }

// Filter matches query against the indexed titles.
// An empty query matches nothing; callers show the unfiltered list instead.
func (idx *Index) Filter(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || idx.Len() == 0 {
		return nil
	}

	matches := sfuzzy.FindFrom(query, idx)

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Index:          m.Index,
			MatchedIndexes: m.MatchedIndexes,
			Score:          matchScore(idx.lowerTitles[m.Index], query),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		return results[i].Index < results[j].Index
	})

	return results
}

// Filter is a one-shot convenience over NewIndex(titles).Filter(query)
func Filter(query string, titles []string) []Result {
	return NewIndex(titles).Filter(query)
}

// matchScore ranks a lowercase title against a lowercase query.
// Lower score = better match
func matchScore(title, query string) int {
	// Exact match is best
	if title == query {
		return 0
	}

	// Prefix match is very good
	if strings.HasPrefix(title, query) {
		return 10
	}

	// Word prefix ("blue" in "kind of blue")
	for _, word := range strings.Fields(title) {
		if strings.HasPrefix(word, query) {
			return 30
		}
	}

	if strings.Contains(title, query) {
		return 50
	}

	return 100 + fuzzy.LevenshteinDistance(query, title)
}
