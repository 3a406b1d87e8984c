package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/location"
	"github.com/jewgo/jewgo/internal/tui/styles"
)

// Layout constants for inspector
const (
	InspectorBorderHeight     = 2
	InspectorScrollIndicators = 2
)

// Inspector shows the details of the selected listing
type Inspector struct {
	item       *domain.CategoryItem
	favorited  bool
	origin     *domain.Coordinate
	width      int
	height     int
	offset     int
	maxVisible int
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	return Inspector{}
}

// SetItem sets the item to display
func (i *Inspector) SetItem(item *domain.CategoryItem, favorited bool) {
	if i.item == nil || item == nil || i.item.ID != item.ID {
		i.offset = 0
	}
	i.item = item
	i.favorited = favorited
}

// SetOrigin sets the position distances are measured from
func (i *Inspector) SetOrigin(origin *domain.Coordinate) {
	i.origin = origin
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	// title and blank line take two more
	i.maxVisible = max(height-InspectorBorderHeight-InspectorScrollIndicators-2, 1)
}

// HasItem returns true if there is an item to display
func (i Inspector) HasItem() bool {
	return i.item != nil
}

// ScrollDown moves the body one line down
func (i *Inspector) ScrollDown() { i.offset++ }

// ScrollUp moves the body one line up
func (i *Inspector) ScrollUp() { i.offset = max(i.offset-1, 0) }

// Update handles messages (the inspector is not focusable)
func (i Inspector) Update(_ tea.Msg) (Inspector, tea.Cmd) {
	return i, nil
}

// View renders the component
func (i Inspector) View() string {
	style := styles.InactiveBorder
	contentWidth := max(i.width-3, 10)

	lines := i.lines(contentWidth)
	maxOffset := max(len(lines)-i.maxVisible, 0)
	offset := min(i.offset, maxOffset)
	end := min(offset+i.maxVisible, len(lines))

	up, down := " ", " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	if end < len(lines) {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{styles.AccentStyle.Render("Details"), "", up}
	parts = append(parts, lines[offset:end]...)
	parts = append(parts, down)

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(i.width - frameW).
		Height(i.height - frameH).
		Render(strings.Join(parts, "\n"))
}

func (i Inspector) lines(width int) []string {
	if i.item == nil {
		return []string{styles.DimStyle.Render("Nothing selected")}
	}
	it := i.item

	heart := styles.DimStyle.Render(styles.NotFavoriteChar)
	if i.favorited {
		heart = styles.FavoriteStyle.Render(styles.FavoriteChar)
	}

	var out []string
	out = append(out, heart+" "+styles.TitleStyle.Render(styles.Truncate(it.Title, width-2)))

	var meta []string
	if it.HasRating() {
		meta = append(meta, styles.RatingStyle.Render(fmt.Sprintf("%s %.1f", styles.StarChar, it.RatingValue())))
		if it.ReviewCount > 0 {
			meta = append(meta, fmt.Sprintf("(%d reviews)", it.ReviewCount))
		}
	}
	if len(meta) > 0 {
		out = append(out, styles.SubtitleStyle.Render(strings.Join(meta, "  ")))
	}
	if b := badges(it); b != "" {
		out = append(out, b)
	}

	if addr := address(it); addr != "" {
		out = append(out, "", styles.DimStyle.Render("Address"))
		out = append(out, wrap(addr, width)...)
	}
	if i.origin != nil && it.Coordinate != nil {
		d := location.Distance(*i.origin, *it.Coordinate)
		out = append(out, styles.DimStyle.Render("Distance")+" "+location.FormatDistance(d))
	}

	if amenities := amenityList(it); len(amenities) > 0 {
		out = append(out, "", styles.DimStyle.Render("Amenities"))
		out = append(out, wrap(strings.Join(amenities, ", "), width)...)
	}

	if it.Description != "" {
		out = append(out, "")
		out = append(out, wrap(it.Description, width)...)
	}
	return out
}

// badges renders the kosher level and the price as labels
func badges(it *domain.CategoryItem) string {
	var out []string
	if it.KosherLevel != domain.KosherUnknown {
		out = append(out, styles.BadgeStyle.Render(string(it.KosherLevel)))
	}
	if it.Price != "" {
		out = append(out, styles.DimBadgeStyle.Render(it.Price))
	}
	return strings.Join(out, " ")
}

func address(it *domain.CategoryItem) string {
	var parts []string
	for _, p := range []string{it.Address, it.City, strings.TrimSpace(it.State + " " + it.ZipCode)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func amenityList(it *domain.CategoryItem) []string {
	var out []string
	if it.IsOpen {
		out = append(out, "open now")
	}
	if it.OpenWeekends {
		out = append(out, "open weekends")
	}
	if it.HasParking {
		out = append(out, "parking")
	}
	if it.HasWifi {
		out = append(out, "wifi")
	}
	if it.HasAccessibility {
		out = append(out, "accessible")
	}
	if it.HasDelivery {
		out = append(out, "delivery")
	}
	return out
}

// wrap breaks text on spaces so no line exceeds width runes
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
