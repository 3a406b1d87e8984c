package tui

import "github.com/jewgo/jewgo/internal/search"

// sortCycle is the order the sort key steps through
var sortCycle = []struct {
	by    search.SortBy
	order search.SortOrder
}{
	{search.SortByDistance, search.SortAsc},
	{search.SortByRating, search.SortDesc},
	{search.SortByName, search.SortAsc},
}

// cycleSort advances to the next sort. Distance is skipped while the
// position is unknown because it would leave the server order untouched.
func cycleSort(f search.Filters, haveOrigin bool) search.Filters {
	current := 0
	for i, s := range sortCycle {
		if s.by == f.SortBy {
			current = i
			break
		}
	}
	for step := 1; step <= len(sortCycle); step++ {
		next := sortCycle[(current+step)%len(sortCycle)]
		if next.by == search.SortByDistance && !haveOrigin {
			continue
		}
		f.SortBy, f.SortOrder = next.by, next.order
		return f
	}
	return f
}
