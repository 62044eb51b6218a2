package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Kind tells plugin entries from theme entries
type Kind string

const (
	KindPlugin Kind = "plugin"
	KindTheme  Kind = "theme"
)

// Entry is a registered repository
type Entry struct {
	Repo    string // "owner/repo"
	Kind    Kind
	Version string // frozen version, empty when tracking latest
}

// SearchResult represents a search result
type SearchResult struct {
	Entry
	Index          int   // position in the searched list
	Score          int   // Higher is better
	MatchedIndexes []int // rune positions of Repo that matched
}

// entries wraps registered repositories for fuzzy searching
type entries []Entry

// String returns the searchable string for an entry
func (e entries) String(i int) string {
	return strings.ToLower(e[i].Repo)
}

// Len returns the number of entries
func (e entries) Len() int {
	return len(e)
}

// FuzzySearch ranks entries whose repository fuzzily matches query.
// An empty query returns every entry unranked.
func FuzzySearch(list []Entry, query string) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		results := make([]SearchResult, 0, len(list))
		for i, e := range list {
			results = append(results, SearchResult{Entry: e, Index: i})
		}
		return results
	}

	matches := fuzzy.FindFrom(query, entries(list))

	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, SearchResult{
			Entry:          list[match.Index],
			Index:          match.Index,
			Score:          match.Score,
			MatchedIndexes: match.MatchedIndexes,
		})
	}

	// Sort by score (descending)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// SimpleSearch performs a simple substring search
func SimpleSearch(list []Entry, query string) []SearchResult {
	var results []SearchResult
	query = strings.ToLower(query)

	for i, e := range list {
		if strings.Contains(strings.ToLower(e.Repo), query) {
			results = append(results, SearchResult{
				Entry: e,
				Index: i,
				Score: 100, // Default score for simple matches
			})
		}
	}

	return results
}
