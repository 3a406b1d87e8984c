package search

import (
	"testing"

	"github.com/jewgo/jewgo/internal/domain"
	"github.com/stretchr/testify/require"
)

func rated(v float64) *float64 { return &v }

func ids(items []domain.CategoryItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

var miami = domain.Coordinate{Latitude: 25.79, Longitude: -80.13}

func fixture() []domain.CategoryItem {
	return []domain.CategoryItem{
		{ID: "near", Title: "Kosher Pizza", City: "Miami Beach", Coordinate: &domain.Coordinate{Latitude: 25.79, Longitude: -80.13}, Rating: rated(4.5), Price: "$$", KosherLevel: domain.KosherGlatt, HasParking: true},
		{ID: "mid", Title: "Bagel Bar", City: "Aventura", Coordinate: &domain.Coordinate{Latitude: 25.90, Longitude: -80.13}, Rating: rated(3.2), Price: "$", HasWifi: true},
		{ID: "far", Title: "Deli", City: "New York", Coordinate: &domain.Coordinate{Latitude: 40.71, Longitude: -74.00}, Rating: rated(4.9), Price: "$$"},
		{ID: "nowhere", Title: "anchor Cafe", Description: "sushi and salads"},
	}
}

func TestMatchesAndFilter(t *testing.T) {
	t.Parallel()

	items := fixture()
	require.True(t, Matches(items[0], "pizza"))
	require.True(t, Matches(items[0], "PIZZA miami"))
	require.False(t, Matches(items[0], "sushi"))
	require.True(t, Matches(items[3], "sushi"))
	require.True(t, Matches(items[1], ""))

	require.Equal(t, []string{"nowhere"}, ids(Filter(items, "sushi")))
	require.Len(t, Filter(items, "  "), len(items))
}

func TestRank(t *testing.T) {
	t.Parallel()

	items := []domain.CategoryItem{
		{ID: "long", Title: "Pizza Palace"},
		{ID: "exact", Title: "Pizza"},
		{ID: "miss", Title: "Bagels"},
	}
	results := Rank("pizza", items)
	require.Len(t, results, 2)
	require.Equal(t, "exact", results[0].Item.ID)
	require.Equal(t, "long", results[1].Item.ID)

	require.Nil(t, Rank("", items))
}

func TestFilters_ActiveCount(t *testing.T) {
	t.Parallel()

	f := DefaultFilters()
	require.Zero(t, f.ActiveCount())
	require.False(t, f.HasActive())

	f.MaxDistance = 5
	f.MinRating = 4
	f.KosherLevel = "glatt"
	f.HasWifi = true
	f.OpenNow = true
	f.SortBy = SortByRating
	f.SortOrder = SortDesc
	require.Equal(t, 6, f.ActiveCount())
	require.True(t, f.HasActive())
}

func TestFilters_ApplyDistance(t *testing.T) {
	t.Parallel()

	f := DefaultFilters()
	f.MaxDistance = 10
	origin := miami

	// Items without coordinates survive and sort last
	require.Equal(t, []string{"near", "mid", "nowhere"}, ids(f.Apply(fixture(), &origin)))

	// No origin: nothing to measure, order untouched
	require.Equal(t, []string{"near", "mid", "far", "nowhere"}, ids(f.Apply(fixture(), nil)))

	f.SortOrder = SortDesc
	require.Equal(t, []string{"mid", "near", "nowhere"}, ids(f.Apply(fixture(), &origin)))
}

func TestFilters_ApplyAttributes(t *testing.T) {
	t.Parallel()

	f := DefaultFilters()
	f.MinRating = 4
	require.Equal(t, []string{"near", "far"}, ids(f.Apply(fixture(), nil)))

	f = DefaultFilters()
	f.PriceRange = "$$"
	f.KosherLevel = string(domain.KosherGlatt)
	require.Equal(t, []string{"near"}, ids(f.Apply(fixture(), nil)))

	f = DefaultFilters()
	f.HasWifi = true
	require.Equal(t, []string{"mid"}, ids(f.Apply(fixture(), nil)))

	f = DefaultFilters()
	f.City = "miami beach"
	require.Equal(t, []string{"near", "nowhere"}, ids(f.Apply(fixture(), nil)))
}

func TestFilters_ApplySort(t *testing.T) {
	t.Parallel()

	f := DefaultFilters()
	f.SortBy = SortByRating
	f.SortOrder = SortDesc
	require.Equal(t, []string{"far", "near", "mid", "nowhere"}, ids(f.Apply(fixture(), nil)))

	f.SortBy = SortByName
	f.SortOrder = SortAsc
	require.Equal(t, []string{"nowhere", "mid", "far", "near"}, ids(f.Apply(fixture(), nil)))

	input := fixture()
	_ = f.Apply(input, nil)
	require.Equal(t, "near", input[0].ID, "input must not be reordered")
}
