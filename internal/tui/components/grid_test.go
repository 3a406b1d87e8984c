package components

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jewgo/jewgo/internal/domain"
	"github.com/stretchr/testify/require"
)

func items(titles ...string) []domain.CategoryItem {
	out := make([]domain.CategoryItem, len(titles))
	for i, t := range titles {
		out[i] = domain.CategoryItem{ID: fmt.Sprintf("id-%d", i), Title: t}
	}
	return out
}

func TestGrid_SetItemsKeepsSelection(t *testing.T) {
	g := NewGrid()
	g.SetSize(40, 20)
	g.SetFocused(true)
	g.SetItems(items("Kosher Deli", "Bagel Shop", "Pizza Place"))

	g, _ = g.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, "id-1", g.SelectedItem().ID)

	// the next page arrives with the old rows first
	g.SetItems(append(items("Kosher Deli", "Bagel Shop", "Pizza Place"), domain.CategoryItem{ID: "id-9", Title: "Falafel"}))
	require.Equal(t, 1, g.Cursor())
	require.Equal(t, "id-1", g.SelectedItem().ID)
	require.Equal(t, 4, g.Len())
}

func TestGrid_SetItemsResetsWhenSelectionGone(t *testing.T) {
	g := NewGrid()
	g.SetSize(40, 20)
	g.SetFocused(true)
	g.SetItems(items("a", "b", "c"))
	g, _ = g.Update(tea.KeyMsg{Type: tea.KeyDown})
	g, _ = g.Update(tea.KeyMsg{Type: tea.KeyDown})

	g.SetItems([]domain.CategoryItem{{ID: "other", Title: "x"}})
	require.Equal(t, 0, g.Cursor())
	require.Equal(t, "other", g.SelectedItem().ID)
}

func TestGrid_Filter(t *testing.T) {
	g := NewGrid()
	g.SetSize(40, 20)
	g.SetItems(items("Kosher Deli", "Bagel Shop", "Pizza Place"))

	g.SetFilterQuery("bagel")
	require.True(t, g.IsFiltering())
	require.Equal(t, 1, g.Len())
	require.Equal(t, "Bagel Shop", g.SelectedItem().Title)

	g.ClearFilter()
	require.False(t, g.IsFiltering())
	require.Equal(t, 3, g.Len())
}

func TestGrid_FilterHighlightsTitle(t *testing.T) {
	g := NewGrid()
	g.SetSize(40, 20)
	list := items("Kosher Deli", "Bagel Shop", "Shop")
	list[2].City = "Brooklyn"
	g.SetItems(list)

	g.SetFilterQuery("bagel")
	require.Equal(t, []int{0, 1, 2, 3, 4}, g.matches[1])

	// a city match has nothing to highlight in the title
	g.SetFilterQuery("brooklyn")
	require.Equal(t, 1, g.Len())
	require.Empty(t, g.matches[2])

	g.ClearFilter()
	require.Nil(t, g.matches)
}

func TestHighlightParts(t *testing.T) {
	parts := highlightParts("Bagel Shop", []int{0, 1, 2, 3, 4})
	require.Len(t, parts, 2)
	require.Equal(t, "Bagel", parts[0].Text)
	require.True(t, parts[0].Highlight)
	require.Equal(t, " Shop", parts[1].Text)
	require.False(t, parts[1].Highlight)

	parts = highlightParts("Deli", []int{1, 3})
	require.Len(t, parts, 4)
	require.Equal(t, "D", parts[0].Text)
	require.True(t, parts[1].Highlight)
	require.Equal(t, "i", parts[3].Text)
	require.True(t, parts[3].Highlight)

	require.Equal(t, "Deli", highlightParts("Deli", nil)[0].Text)
}

func TestInspector_Badges(t *testing.T) {
	item := domain.CategoryItem{ID: "1", Title: "Deli", KosherLevel: domain.KosherGlatt, Price: "$$"}
	b := badges(&item)
	require.Contains(t, b, "glatt")
	require.Contains(t, b, "$$")

	require.Empty(t, badges(&domain.CategoryItem{ID: "2"}))
}

func TestSidebar_Busy(t *testing.T) {
	s := NewSidebar([]string{"eatery", "shul"})
	require.False(t, s.AnyBusy())

	s.SetBusy("shul", true)
	require.True(t, s.Busy("shul"))
	require.True(t, s.AnyBusy())
	require.Equal(t, spinnerFrames[0]+" Shul", CategoryItem{Key: "shul", Busy: true}.Title())

	s.SetBusy("shul", false)
	require.False(t, s.AnyBusy())
}

func TestGrid_FilterMatchesCity(t *testing.T) {
	g := NewGrid()
	list := items("Deli", "Shop")
	list[1].City = "Brooklyn"
	g.SetItems(list)

	g.SetFilterQuery("brooklyn")
	require.Equal(t, 1, g.Len())
	require.Equal(t, "id-1", g.SelectedItem().ID)
}

func TestGrid_NearEnd(t *testing.T) {
	g := NewGrid()
	g.SetSize(40, 30)
	g.SetFocused(true)
	require.True(t, g.NearEnd(3), "an empty grid always wants more")

	titles := make([]string, 10)
	for i := range titles {
		titles[i] = fmt.Sprintf("item %d", i)
	}
	g.SetItems(items(titles...))
	require.False(t, g.NearEnd(3))

	for i := 0; i < 6; i++ {
		g, _ = g.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	require.Equal(t, 6, g.Cursor())
	require.True(t, g.NearEnd(3))
}

func TestGrid_ResetClearsEverything(t *testing.T) {
	g := NewGrid()
	g.SetItems(items("a", "b"))
	g.SetFilterQuery("a")

	g.Reset()
	require.Equal(t, 0, g.Len())
	require.Nil(t, g.SelectedItem())
	require.False(t, g.IsFiltering())
}

func TestSidebar_Select(t *testing.T) {
	s := NewSidebar([]string{"eatery", "shul", "events"})
	s.SetSize(30, 20)
	require.Equal(t, "eatery", s.SelectedCategory())

	s.Select("events")
	require.Equal(t, "events", s.SelectedCategory())

	s.Select("unknown")
	require.Equal(t, "events", s.SelectedCategory())
}

func TestCategoryItem_Title(t *testing.T) {
	item := CategoryItem{Key: "eatery", State: CategoryState{Status: StatusLoaded, Count: 12}}
	require.Contains(t, item.Title(), "(12)")

	item.State.Status = StatusError
	require.Contains(t, item.Title(), "✗")
}

func TestOmnibar_Submit(t *testing.T) {
	o := NewOmnibar()
	o.Show("Search", "")
	require.True(t, o.IsVisible())

	o, _, submitted := o.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("pizza")})
	require.False(t, submitted)

	o, _, submitted = o.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, submitted)
	require.False(t, o.IsVisible())
	require.Equal(t, "pizza", o.Query())
}

func TestOmnibar_EscapeCancels(t *testing.T) {
	o := NewOmnibar()
	o.Show("Search", "old")

	o, _, submitted := o.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, submitted)
	require.False(t, o.IsVisible())
}
