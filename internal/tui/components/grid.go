package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/location"
	"github.com/jewgo/jewgo/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Layout constants for grid
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Padding inside the border (Padding(0,1) = 1 left + 1 right)
	HorizontalPadding = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2

	// Breadcrumb line at top of content area
	BreadcrumbLines = 1

	// Extra safety margin for item width calculations
	ItemWidthMargin = 2
)

// Grid is the listing browser. It renders the loaded items of one
// category and filters them locally as the user types.
type Grid struct {
	items []domain.CategoryItem
	keys  ListKeyMap

	// favorited reports the heart state of an entity
	favorited func(id string) bool
	origin    *domain.Coordinate

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	breadcrumb string
	footer     string

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int         // indices into items
	matches      map[int][]int // item index -> matched byte offsets in the title
}

// NewGrid creates a new grid component
func NewGrid() Grid {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return Grid{
		filterInput: ti,
		keys:        DefaultListKeyMap(),
		favorited:   func(string) bool { return false },
	}
}

// SetItems replaces the items. The cursor stays on the same entity when
// it is still present, so appending a page does not jump the selection.
func (g *Grid) SetItems(items []domain.CategoryItem) {
	selectedID := ""
	if sel := g.SelectedItem(); sel != nil {
		selectedID = sel.ID
	}

	g.items = items
	if g.filterActive {
		g.applyFilter()
	}

	g.cursor = 0
	if selectedID != "" {
		for i := 0; i < g.itemCount(); i++ {
			if g.items[g.mapIndex(i)].ID == selectedID {
				g.cursor = i
				break
			}
		}
	}
	g.ensureVisible()
}

// Reset clears the items, the cursor and any filter
func (g *Grid) Reset() {
	g.items = nil
	g.cursor = 0
	g.offset = 0
	g.clearFilter()
}

// SetFavorited installs the lookup used to draw hearts
func (g *Grid) SetFavorited(fn func(id string) bool) {
	g.favorited = fn
}

// SetOrigin sets the position distances are measured from
func (g *Grid) SetOrigin(origin *domain.Coordinate) {
	g.origin = origin
}

// SetSize updates the component dimensions
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.recalcMaxVisible()
}

// SetBreadcrumb sets the text on the first line
func (g *Grid) SetBreadcrumb(crumb string) {
	g.breadcrumb = crumb
}

// SetFooter sets the status text shown below the items, e.g. "loading more"
func (g *Grid) SetFooter(footer string) {
	g.footer = footer
}

// recalcMaxVisible calculates maxVisible accounting for breadcrumb and filter bar
func (g *Grid) recalcMaxVisible() {
	interiorHeight := g.height - BorderHeight
	g.maxVisible = interiorHeight - ScrollIndicatorLines - BreadcrumbLines
	if g.filterActive {
		g.maxVisible--
	}
	if g.maxVisible < 1 {
		g.maxVisible = 1
	}
}

// SetFocused sets the focus state
func (g *Grid) SetFocused(focused bool) {
	g.focused = focused
}

// IsFocused returns the focus state
func (g Grid) IsFocused() bool {
	return g.focused
}

// Cursor returns the current cursor position
func (g Grid) Cursor() int {
	return g.cursor
}

// NearEnd reports whether the cursor is within n rows of the last item.
// The app uses it to page in more listings.
func (g Grid) NearEnd(n int) bool {
	count := g.itemCount()
	return count == 0 || g.cursor >= count-1-n
}

func (g Grid) itemCount() int {
	if g.filteredIdx != nil {
		return len(g.filteredIdx)
	}
	return len(g.items)
}

// Len returns how many rows are shown
func (g Grid) Len() int {
	return g.itemCount()
}

// SelectedItem returns the item under the cursor
func (g Grid) SelectedItem() *domain.CategoryItem {
	count := g.itemCount()
	if count == 0 || g.cursor >= count {
		return nil
	}
	item := g.items[g.mapIndex(g.cursor)]
	return &item
}

func (g *Grid) ensureVisible() {
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.maxVisible > 0 && g.cursor >= g.offset+g.maxVisible {
		g.offset = g.cursor - g.maxVisible + 1
	}
}

// ToggleFilter activates the filter input
func (g *Grid) ToggleFilter() {
	g.filterActive = true
	g.filterInput.Focus()
	g.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (g Grid) IsFiltering() bool {
	return g.filterActive
}

// IsFilterTyping returns true if filter is active and the input is focused
func (g Grid) IsFilterTyping() bool {
	return g.filterActive && g.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (g *Grid) ClearFilter() {
	g.clearFilter()
}

func (g *Grid) clearFilter() {
	g.filterActive = false
	g.filterQuery = ""
	g.filteredIdx = nil
	g.matches = nil
	g.filterInput.SetValue("")
	g.filterInput.Blur()
	g.recalcMaxVisible()
}

// SetFilterQuery filters as if query had been typed
func (g *Grid) SetFilterQuery(query string) {
	g.filterActive = true
	g.filterInput.SetValue(query)
	g.applyFilter()
	g.recalcMaxVisible()
}

// applyFilter fuzzy matches the query against titles and cities
func (g *Grid) applyFilter() {
	query := g.filterInput.Value()
	g.filterQuery = query

	if query == "" {
		g.filteredIdx = nil
		g.matches = nil
		return
	}

	haystack := make([]string, len(g.items))
	for i, item := range g.items {
		haystack[i] = strings.ToLower(item.Title + " " + item.City)
	}

	matches := fuzzy.Find(strings.ToLower(query), haystack)

	g.filteredIdx = make([]int, len(matches))
	g.matches = make(map[int][]int, len(matches))
	for i, match := range matches {
		g.filteredIdx[i] = match.Index
		g.matches[match.Index] = titleMatches(g.items[match.Index].Title, match.MatchedIndexes)
	}

	g.cursor = 0
	g.offset = 0
}

// titleMatches keeps the matched offsets that fall inside title. Offsets
// are into the lowercased haystack, so titles whose lowercase form has a
// different byte length get no highlight.
func titleMatches(title string, matched []int) []int {
	if len(strings.ToLower(title)) != len(title) {
		return nil
	}
	var out []int
	for _, idx := range matched {
		if idx < len(title) {
			out = append(out, idx)
		}
	}
	return out
}

func (g Grid) mapIndex(i int) int {
	if g.filteredIdx != nil && i < len(g.filteredIdx) {
		return g.filteredIdx[i]
	}
	return i
}

// Init initializes the component
func (g Grid) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (g Grid) Update(msg tea.Msg) (Grid, tea.Cmd) {
	if !g.focused {
		return g, nil
	}

	if g.filterActive && g.filterInput.Focused() {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc":
				g.clearFilter()
				return g, nil
			case "enter":
				g.filterInput.Blur()
				return g, nil
			case "backspace":
				if g.filterInput.Value() == "" {
					g.clearFilter()
					return g, nil
				}
			}
		}

		var cmd tea.Cmd
		g.filterInput, cmd = g.filterInput.Update(msg)
		g.applyFilter()
		return g, cmd
	}

	if g.filterActive {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, g.keys.Escape):
				g.clearFilter()
				return g, nil
			case key.Matches(msg, g.keys.Filter):
				g.filterInput.Focus()
				return g, nil
			}
		}
	}

	count := g.itemCount()
	if count == 0 {
		return g, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, g.keys.Down):
			if g.cursor < count-1 {
				g.cursor++
				g.ensureVisible()
			}
		case key.Matches(msg, g.keys.Up):
			if g.cursor > 0 {
				g.cursor--
				g.ensureVisible()
			}
		case key.Matches(msg, g.keys.Home):
			g.cursor = 0
			g.offset = 0
		case key.Matches(msg, g.keys.End):
			g.cursor = count - 1
			g.ensureVisible()
		case key.Matches(msg, g.keys.HalfDown):
			g.cursor = min(g.cursor+g.maxVisible/2, count-1)
			g.ensureVisible()
		case key.Matches(msg, g.keys.HalfUp):
			g.cursor = max(g.cursor-g.maxVisible/2, 0)
			g.ensureVisible()
		case key.Matches(msg, g.keys.PageDown):
			g.cursor = min(g.cursor+g.maxVisible, count-1)
			g.ensureVisible()
		case key.Matches(msg, g.keys.PageUp):
			g.cursor = max(g.cursor-g.maxVisible, 0)
			g.ensureVisible()
		}
	}

	return g, nil
}

// View renders the component
func (g Grid) View() string {
	style := styles.InactiveBorder
	if g.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(g.width - frameW).
		Height(g.height - frameH).
		Render(g.renderList())
}

func (g Grid) renderList() string {
	itemWidth := g.width - BorderWidth - HorizontalPadding - ItemWidthMargin

	breadcrumbLine := " "
	if g.breadcrumb != "" {
		breadcrumbLine = styles.AccentStyle.Render(styles.Truncate(g.breadcrumb, itemWidth))
	}

	count := g.itemCount()
	if count == 0 {
		emptyMsg := "No listings"
		if g.filterActive && g.filterQuery != "" {
			emptyMsg = "No matches"
		}
		if g.footer != "" {
			emptyMsg = g.footer
		}
		return breadcrumbLine + "\n \n" + styles.DimStyle.Render(emptyMsg) + "\n "
	}

	end := min(g.offset+g.maxVisible, count)
	lines := make([]string, 0, end-g.offset)
	for i := g.offset; i < end; i++ {
		idx := g.mapIndex(i)
		lines = append(lines, g.renderItem(g.items[idx], g.matches[idx], i == g.cursor, itemWidth))
	}

	header := " "
	if g.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	switch {
	case end < count:
		footer = styles.DimStyle.Render("↓ more")
	case g.footer != "":
		footer = styles.DimStyle.Render(g.footer)
	}

	content := breadcrumbLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if g.filterActive {
		content += "\n" + g.renderFilterBar()
	}
	return content
}

// renderItem draws one row: heart, title, rating, distance or city
func (g Grid) renderItem(item domain.CategoryItem, hits []int, selected bool, width int) string {
	heart, heartFg := styles.NotFavoriteChar, styles.DimGray
	if g.favorited(item.ID) {
		heart, heartFg = styles.FavoriteChar, styles.Red
	}

	badge := ""
	if item.HasRating() {
		badge = fmt.Sprintf(" %s%.1f", styles.StarChar, item.RatingValue())
	}
	where := item.City
	if g.origin != nil && item.Coordinate != nil {
		where = location.FormatDistance(location.Distance(*g.origin, *item.Coordinate))
	}
	if where != "" {
		where = " · " + where
	}

	title := styles.Truncate(item.Title, width-lipgloss.Width(badge+where)-4)
	gold, dim := styles.Gold, styles.DimGray

	parts := []styles.RowPart{{Text: heart, Foreground: &heartFg}, {Text: " "}}
	parts = append(parts, highlightParts(title, hits)...)
	parts = append(parts,
		styles.RowPart{Text: badge, Foreground: &gold},
		styles.RowPart{Text: where, Foreground: &dim},
	)
	return styles.RenderListRow(parts, selected, width)
}

// highlightParts splits text into runs of matched and unmatched runes
func highlightParts(text string, hits []int) []styles.RowPart {
	if len(hits) == 0 {
		return []styles.RowPart{{Text: text}}
	}
	hit := make(map[int]bool, len(hits))
	for _, h := range hits {
		hit[h] = true
	}

	var parts []styles.RowPart
	start := 0
	for i := range text {
		if i > start && hit[i] != hit[start] {
			parts = append(parts, styles.RowPart{Text: text[start:i], Highlight: hit[start]})
			start = i
		}
	}
	if start < len(text) {
		parts = append(parts, styles.RowPart{Text: text[start:], Highlight: hit[start]})
	}
	return parts
}

// IsEmpty returns true if there are no items
func (g Grid) IsEmpty() bool {
	return g.itemCount() == 0
}

func (g Grid) renderFilterBar() string {
	countStr := ""
	if g.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", g.itemCount(), len(g.items)))
	}
	return g.filterInput.View() + countStr
}
