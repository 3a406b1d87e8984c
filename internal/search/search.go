package search

import (
	"sort"
	"strings"

	"github.com/jewgo/jewgo/internal/domain"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Result is a ranked query match
type Result struct {
	Item     domain.CategoryItem
	Distance int // Levenshtein distance of the match (lower = better)
}

// searchText is what a query is matched against
func searchText(item domain.CategoryItem) string {
	return strings.Join([]string{item.Title, item.Description, item.City}, " ")
}

// Matches reports whether item matches query. Every whitespace separated
// term must appear, in order, somewhere in the title, description or city.
// An empty query matches everything.
func Matches(item domain.CategoryItem, query string) bool {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return true
	}
	text := searchText(item)
	for _, term := range terms {
		if !fuzzy.MatchFold(term, text) {
			return false
		}
	}
	return true
}

// Filter returns the items matching query, preserving order.
func Filter(items []domain.CategoryItem, query string) []domain.CategoryItem {
	if strings.TrimSpace(query) == "" {
		return items
	}
	out := make([]domain.CategoryItem, 0, len(items))
	for _, item := range items {
		if Matches(item, query) {
			out = append(out, item)
		}
	}
	return out
}

// Rank matches query against item titles and orders the results by
// closeness. Ties keep their original order.
func Rank(query string, items []domain.CategoryItem) []Result {
	query = strings.TrimSpace(query)
	if query == "" || len(items) == 0 {
		return nil
	}

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}

	ranks := fuzzy.RankFindFold(query, titles)
	sort.Stable(ranks)

	results := make([]Result, 0, len(ranks))
	for _, r := range ranks {
		results = append(results, Result{
			Item:     items[r.OriginalIndex],
			Distance: r.Distance,
		})
	}
	return results
}
