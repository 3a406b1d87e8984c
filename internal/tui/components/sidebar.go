package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jewgo/jewgo/internal/catalog"
	"github.com/jewgo/jewgo/internal/tui/styles"
)

// CategoryStatus is what the sidebar shows next to a category
type CategoryStatus int

const (
	StatusIdle CategoryStatus = iota
	StatusLoading
	StatusLoaded
	StatusError
)

// CategoryState tracks the last known load state of one category
type CategoryState struct {
	Status CategoryStatus
	Count  int // items loaded so far
}

// CategoryItem implements list.Item for categories
type CategoryItem struct {
	Key   string
	State CategoryState
	Frame int
	// Busy means a request for this category is still running for
	// another screen or a previous visit
	Busy bool
}

// Spinner frames for the loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (i CategoryItem) FilterValue() string { return catalog.DisplayName(i.Key) }

func (i CategoryItem) Title() string {
	name := catalog.DisplayName(i.Key)
	switch {
	case i.State.Status == StatusLoading, i.Busy:
		return spinnerFrames[i.Frame%len(spinnerFrames)] + " " + name
	case i.State.Status == StatusLoaded:
		return fmt.Sprintf("✓ %s (%d)", name, i.State.Count)
	case i.State.Status == StatusError:
		return "✗ " + name
	default:
		return "  " + name
	}
}

func (i CategoryItem) Description() string { return catalog.EntityType(i.Key) }

// Border overhead for the sidebar panel
const BorderSize = 2

// Sidebar is the category picker
type Sidebar struct {
	list         list.Model
	keys         ListKeyMap
	focused      bool
	width        int
	height       int
	categories   []string
	states       map[string]CategoryState
	busy         map[string]bool
	spinnerFrame int
}

// NewSidebar creates a sidebar listing categories
func NewSidebar(categories []string) Sidebar {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	delegate.Styles.SelectedTitle = styles.SelectedItemStyle
	delegate.Styles.NormalTitle = styles.NormalItemStyle

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Jewgo"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.Styles.Title = styles.FocusedItemStyle

	s := Sidebar{
		list:       l,
		keys:       DefaultListKeyMap(),
		categories: categories,
		states:     make(map[string]CategoryState),
		busy:       make(map[string]bool),
	}
	s.refreshItems()
	return s
}

// SetState records the load state of one category
func (s *Sidebar) SetState(category string, state CategoryState) {
	s.states[category] = state
	s.refreshItems()
}

// SetBusy marks a category as having a request in flight
func (s *Sidebar) SetBusy(category string, busy bool) {
	if s.busy[category] == busy {
		return
	}
	if busy {
		s.busy[category] = true
	} else {
		delete(s.busy, category)
	}
	s.refreshItems()
}

// Busy reports whether category is marked as having a request in flight
func (s Sidebar) Busy(category string) bool {
	return s.busy[category]
}

// AnyBusy reports whether any category is marked busy
func (s Sidebar) AnyBusy() bool {
	return len(s.busy) > 0
}

// SpinnerFrame returns the current animation frame
func (s Sidebar) SpinnerFrame() int {
	return s.spinnerFrame
}

// SetSpinnerFrame updates the spinner animation frame
func (s *Sidebar) SetSpinnerFrame(frame int) {
	s.spinnerFrame = frame
	s.refreshItems()
}

func (s *Sidebar) refreshItems() {
	items := make([]list.Item, len(s.categories))
	for i, c := range s.categories {
		items[i] = CategoryItem{Key: c, State: s.states[c], Frame: s.spinnerFrame, Busy: s.busy[c]}
	}
	s.list.SetItems(items)
}

// SetSize updates the component dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.list.SetSize(width-BorderSize, height-BorderSize)
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s Sidebar) IsFocused() bool {
	return s.focused
}

// SelectedCategory returns the highlighted category key
func (s Sidebar) SelectedCategory() string {
	item, ok := s.list.SelectedItem().(CategoryItem)
	if !ok {
		return ""
	}
	return item.Key
}

// Select highlights a category by key
func (s *Sidebar) Select(category string) {
	for i, c := range s.categories {
		if c == category {
			s.list.Select(i)
			return
		}
	}
}

// Init initializes the component
func (s Sidebar) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (s Sidebar) Update(msg tea.Msg) (Sidebar, tea.Cmd) {
	if !s.focused {
		return s, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, s.keys.Down):
			s.list.CursorDown()
		case key.Matches(msg, s.keys.Up):
			s.list.CursorUp()
		case key.Matches(msg, s.keys.Home):
			s.list.Select(0)
		case key.Matches(msg, s.keys.End):
			s.list.Select(len(s.list.Items()) - 1)
		}
	}

	return s, nil
}

// View renders the component
func (s Sidebar) View() string {
	style := styles.InactiveBorder
	if s.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(s.width - frameW).
		Height(s.height - frameH).
		Render(s.list.View())
}
