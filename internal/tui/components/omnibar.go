package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jewgo/jewgo/internal/tui/styles"
)

// Omnibar is the search modal. Unlike the grid filter, a submitted query
// becomes part of the listing request and its cache key.
type Omnibar struct {
	input   textinput.Model
	keys    QueryBarKeyMap
	visible bool
	width   int
	height  int
	title   string
}

// NewOmnibar creates a new omnibar component
func NewOmnibar() Omnibar {
	ti := textinput.New()
	ti.Placeholder = "Search listings..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "? "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return Omnibar{
		input: ti,
		keys:  DefaultQueryBarKeyMap(),
	}
}

// Show makes the omnibar visible with the current query preloaded
func (o *Omnibar) Show(title, query string) {
	o.visible = true
	o.title = title
	o.input.SetValue(query)
	o.input.CursorEnd()
	o.input.Focus()
}

// Hide hides the omnibar
func (o *Omnibar) Hide() {
	o.visible = false
	o.input.Blur()
}

// IsVisible returns true if the omnibar is visible
func (o Omnibar) IsVisible() bool {
	return o.visible
}

// SetSize updates the component dimensions
func (o *Omnibar) SetSize(width, height int) {
	o.width = width
	o.height = height
	o.input.Width = max(width*2/3-10, 20)
}

// Query returns the trimmed query text
func (o Omnibar) Query() string {
	return strings.TrimSpace(o.input.Value())
}

// Init initializes the component
func (o Omnibar) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages. submitted is true when the user pressed enter;
// the omnibar hides itself in that case.
func (o Omnibar) Update(msg tea.Msg) (Omnibar, tea.Cmd, bool) {
	if !o.visible {
		return o, nil, false
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, o.keys.Escape):
			o.Hide()
			return o, nil, false
		case key.Matches(msg, o.keys.Enter):
			o.Hide()
			return o, nil, true
		case key.Matches(msg, o.keys.Clear):
			o.input.SetValue("")
			return o, nil, false
		}
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return o, cmd, false
}

// View renders the component
func (o Omnibar) View() string {
	if !o.visible {
		return ""
	}

	modalWidth := min(max(o.width*2/3, 40), 80)

	var b strings.Builder
	if o.title != "" {
		b.WriteString(styles.ModalTitleStyle.Render(o.title))
		b.WriteString("\n")
	}
	b.WriteString(o.input.View())
	b.WriteString("\n\n")
	b.WriteString(styles.DimStyle.Render("enter search · esc cancel · C-u clear"))

	return styles.ModalStyle.Width(modalWidth).Render(b.String())
}
