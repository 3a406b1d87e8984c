package store

import (
	"testing"

	"github.com/jewgo/jewgo/internal/domain"
	"github.com/stretchr/testify/require"
)

func samplePage() domain.CachedPage {
	rating := 4.5
	return domain.CachedPage{
		Data: []domain.CategoryItem{
			{ID: "1", Title: "Mikvah Tahara", Rating: &rating, Coordinate: &domain.Coordinate{Latitude: 40.7, Longitude: -73.9}},
			{ID: "2", Title: "Mikvah Mei Menachem"},
		},
		CurrentPage: 2,
		HasMore:     true,
		LastQuery:   "",
	}
}

func TestLocalStore_MemoryOnly_RoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewLocalStore("", "")
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.GetPage("mikvah-")
	require.False(t, ok)

	require.NoError(t, s.SavePage("mikvah-", samplePage()))

	got, ok := s.GetPage("mikvah-")
	require.True(t, ok)
	require.Len(t, got.Data, 2)
	require.Equal(t, 2, got.CurrentPage)
	require.True(t, got.HasMore)
	require.NotNil(t, got.Data[0].Rating)
	require.InDelta(t, 4.5, *got.Data[0].Rating, 0.0001)

	s.DeletePage("mikvah-")
	_, ok = s.GetPage("mikvah-")
	require.False(t, ok)
}

func TestLocalStore_Bolt_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	s, err := NewLocalStore(dir, "https://api.jewgo.app/")
	require.NoError(t, err)
	require.NoError(t, s.SavePage("shul-", samplePage()))
	require.NoError(t, s.SaveLocalFavorites([]domain.Favorite{{ID: "local_1", EntityID: "1", EntityName: "Shul"}}))
	require.NoError(t, s.Close())

	// Same server URL with different casing/trailing slash maps to the same db
	s, err = NewLocalStore(dir, "HTTPS://api.jewgo.app")
	require.NoError(t, err)
	defer s.Close()

	page, ok := s.GetPage("shul-")
	require.True(t, ok)
	require.Len(t, page.Data, 2)

	favs, ok := s.GetLocalFavorites()
	require.True(t, ok)
	require.Len(t, favs, 1)
	require.Equal(t, "1", favs[0].EntityID)
}

func TestLocalStore_InvalidatePages_KeepsFavorites(t *testing.T) {
	t.Parallel()

	s, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SavePage("a-", samplePage()))
	require.NoError(t, s.SavePage("b-x", samplePage()))
	require.NoError(t, s.SaveLocalFavorites([]domain.Favorite{{EntityID: "9"}}))

	s.InvalidatePages()

	_, ok := s.GetPage("a-")
	require.False(t, ok)
	_, ok = s.GetPage("b-x")
	require.False(t, ok)
	_, ok = s.GetLocalFavorites()
	require.True(t, ok)

	s.InvalidateAll()
	_, ok = s.GetLocalFavorites()
	require.False(t, ok)
}
