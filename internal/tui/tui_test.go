package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jewgo/jewgo/internal/catalog"
	"github.com/jewgo/jewgo/internal/deeplink"
	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/favorites"
	"github.com/jewgo/jewgo/internal/search"
	"github.com/jewgo/jewgo/internal/store"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pagedListings serves n listings per category, one page at a time
type pagedListings struct {
	total int
}

func (p pagedListings) GetListingsByCategory(_ context.Context, category string, limit, offset int) (domain.ListingsPage, error) {
	var out []domain.Listing
	for i := offset; i < p.total && i < offset+limit; i++ {
		out = append(out, domain.Listing{
			ID:    fmt.Sprintf("%s-%d", category, i),
			Title: fmt.Sprintf("%s place %d", category, i),
			City:  "Miami",
			State: "FL",
		})
	}
	return domain.ListingsPage{Listings: out}, nil
}

// blockingListings holds every request until release is closed
type blockingListings struct {
	release chan struct{}
}

func (b blockingListings) GetListingsByCategory(ctx context.Context, _ string, _, _ int) (domain.ListingsPage, error) {
	select {
	case <-b.release:
		return domain.ListingsPage{}, nil
	case <-ctx.Done():
		return domain.ListingsPage{}, ctx.Err()
	}
}

type recordingOpener struct {
	opened []string
}

func (r *recordingOpener) Open(url string) error {
	r.opened = append(r.opened, url)
	return nil
}

func newTestModel(t *testing.T, total int) Model {
	t.Helper()
	return newTestModelWith(t, total, nil)
}

func newTestModelWith(t *testing.T, total int, opener URLOpener) Model {
	t.Helper()

	rt := catalog.NewRuntime(catalog.Sources{Listings: pagedListings{total: total}}, catalog.Config{PageSize: 5}, quietLogger())
	t.Cleanup(rt.Close)

	st, err := store.NewLocalStore("", "")
	require.NoError(t, err)
	favs := favorites.NewController(favorites.NewLocalRepository(st, quietLogger()), quietLogger())

	ctrl := rt.NewController(catalog.Options{Category: catalog.CategoryEatery})
	m := NewModel(Deps{Catalog: ctrl, Favorites: favs, Opener: opener, Logger: quietLogger()})
	t.Cleanup(m.Close)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

// mount runs the first load and feeds the published snapshot back in
func mount(t *testing.T, m Model) Model {
	t.Helper()
	MountCmd(context.Background(), m.catalog)()
	msg := waitForSnapshot(m.snapshots)()
	snap, ok := msg.(SnapshotMsg)
	require.True(t, ok)
	next, _ := m.Update(snap)
	return next.(Model)
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_MountFillsGrid(t *testing.T) {
	m := mount(t, newTestModel(t, 12))

	require.Equal(t, 5, m.Grid.Len())
	require.True(t, m.Snapshot.HasMore)
	require.Equal(t, "eatery-0", m.Grid.SelectedItem().ID)
	require.True(t, m.Inspector.HasItem())
}

func TestModel_ViewRendersChrome(t *testing.T) {
	m := mount(t, newTestModel(t, 3))

	view := m.View()
	require.Contains(t, view, "Guest")
	require.Contains(t, view, "eatery place 0")
}

func TestModel_NotReadyView(t *testing.T) {
	rt := catalog.NewRuntime(catalog.Sources{Listings: pagedListings{}}, catalog.Config{}, quietLogger())
	defer rt.Close()
	m := NewModel(Deps{Catalog: rt.NewController(catalog.Options{Category: catalog.CategoryShul})})
	defer m.Close()

	require.Equal(t, "Loading...", m.View())
}

func TestModel_TabSwitchesCategory(t *testing.T) {
	m := mount(t, newTestModel(t, 3))

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	require.Equal(t, catalog.CategoryShul, m.Snapshot.Category)
	require.Equal(t, catalog.CategoryShul, m.Sidebar.SelectedCategory())
	require.Equal(t, 0, m.Grid.Len())
}

func TestModel_SearchSubmitsQuery(t *testing.T) {
	m := mount(t, newTestModel(t, 3))

	m, _ = press(m, runes("s"))
	require.Equal(t, StateSearching, m.State)

	m, _ = press(m, runes("pizza"))
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, StateBrowsing, m.State)
	require.Equal(t, "pizza", m.Snapshot.Query)
	require.Contains(t, m.breadcrumb(), "pizza")

	// escape in the grid drops the query again
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Empty(t, m.Snapshot.Query)
}

func TestModel_ToggleFavorite(t *testing.T) {
	m := mount(t, newTestModel(t, 3))

	m, cmd := press(m, runes("f"))
	require.NotNil(t, cmd)

	msg := cmd()
	toggled, ok := msg.(FavoriteToggledMsg)
	require.True(t, ok)
	require.True(t, toggled.OK)
	require.Equal(t, "eatery-0", toggled.EntityID)

	next, _ := m.Update(toggled)
	m = next.(Model)
	require.False(t, m.StatusIsErr)
	require.Equal(t, "Added to favorites: eatery place 0", m.StatusMsg)
	require.True(t, m.favorites.IsFavorited("eatery-0"))
}

func TestModel_ShareOnlyEvents(t *testing.T) {
	m := mount(t, newTestModel(t, 3))

	m, _ = press(m, runes("y"))
	require.True(t, m.StatusIsErr)
	require.Equal(t, "Only events can be shared", m.StatusMsg)
}

func TestModel_Directions(t *testing.T) {
	opener := &recordingOpener{}
	m := mount(t, newTestModelWith(t, 3, opener))

	m, cmd := press(m, runes("d"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(StatusMsg)
	require.True(t, ok)
	require.False(t, msg.IsError)

	require.Len(t, opener.opened, 1)
	require.Contains(t, opener.opened[0], "destination=Miami%2C+FL")
}

func TestModel_BrowseOnlyEvents(t *testing.T) {
	opener := &recordingOpener{}
	m := mount(t, newTestModelWith(t, 3, opener))

	m, _ = press(m, runes("w"))
	require.True(t, m.StatusIsErr)
	require.Empty(t, opener.opened)
}

func TestModel_SidebarMarksCategoriesBusyElsewhere(t *testing.T) {
	src := blockingListings{release: make(chan struct{})}
	rt := catalog.NewRuntime(catalog.Sources{Listings: src}, catalog.Config{}, quietLogger())
	t.Cleanup(rt.Close)

	// another screen is loading shuls
	other := rt.NewController(catalog.Options{Category: catalog.CategoryShul})
	t.Cleanup(other.Close)
	done := make(chan struct{})
	go func() {
		defer close(done)
		other.Mount(context.Background())
	}()
	require.Eventually(t, func() bool { return rt.Loading(catalog.CategoryShul) }, time.Second, 5*time.Millisecond)

	ctrl := rt.NewController(catalog.Options{Category: catalog.CategoryEatery})
	m := NewModel(Deps{Catalog: ctrl, Runtime: rt, Logger: quietLogger()})
	t.Cleanup(m.Close)

	next, _ := m.Update(spinner.TickMsg{})
	m = next.(Model)
	require.True(t, m.Sidebar.Busy(catalog.CategoryShul))
	require.False(t, m.Sidebar.Busy(catalog.CategoryEatery))

	close(src.release)
	<-done
	next, _ = m.Update(spinner.TickMsg{})
	m = next.(Model)
	require.False(t, m.Sidebar.AnyBusy())
}

func TestModel_SortCyclesWithoutOrigin(t *testing.T) {
	m := mount(t, newTestModel(t, 3))

	m, _ = press(m, runes("o"))
	require.Equal(t, search.SortByRating, m.Filters.SortBy)
	require.Equal(t, "Sorted by rating", m.StatusMsg)
}

func TestModel_HelpToggle(t *testing.T) {
	m := mount(t, newTestModel(t, 3))

	m, _ = press(m, runes("?"))
	require.Equal(t, StateHelp, m.State)
	require.True(t, strings.Contains(m.View(), "Keyboard shortcuts"))

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, StateBrowsing, m.State)
}

func TestModel_ClearStatus(t *testing.T) {
	m := mount(t, newTestModel(t, 3))
	m.StatusMsg = "hello"

	next, _ := m.Update(ClearStatusMsg{})
	require.Empty(t, next.(Model).StatusMsg)
}

func TestCycleSort(t *testing.T) {
	f := search.DefaultFilters()

	f = cycleSort(f, true)
	require.Equal(t, search.SortByRating, f.SortBy)
	require.Equal(t, search.SortDesc, f.SortOrder)

	f = cycleSort(f, true)
	require.Equal(t, search.SortByName, f.SortBy)
	require.Equal(t, search.SortAsc, f.SortOrder)

	f = cycleSort(f, true)
	require.Equal(t, search.SortByDistance, f.SortBy)

	// without a position distance is skipped
	f = cycleSort(f, false)
	require.Equal(t, search.SortByRating, f.SortBy)
	f = cycleSort(f, false)
	f = cycleSort(f, false)
	require.Equal(t, search.SortByRating, f.SortBy)
}

func TestNextCategory(t *testing.T) {
	require.Equal(t, catalog.CategoryShul, nextCategory(catalog.CategoryEatery))
	last := catalog.Categories[len(catalog.Categories)-1]
	require.Equal(t, catalog.Categories[0], nextCategory(last))
	require.Equal(t, catalog.Categories[0], nextCategory("unknown"))
}

func TestShareLink(t *testing.T) {
	link, ok := shareLink(catalog.CategoryEvents, "ev-1")
	require.True(t, ok)
	require.Equal(t, deeplink.EventUniversalLink("ev-1"), link)

	_, ok = shareLink(catalog.CategoryEatery, "e-1")
	require.False(t, ok)
}
