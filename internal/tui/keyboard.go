package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jewgo/jewgo/internal/adapter"
	"github.com/jewgo/jewgo/internal/catalog"
	"github.com/jewgo/jewgo/internal/deeplink"
)

// handleKeyMsg routes key presses by application state and focused pane
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.State {
	case StateSearching:
		var cmd tea.Cmd
		var submitted bool
		m.Omnibar, cmd, submitted = m.Omnibar.Update(msg)
		if !m.Omnibar.IsVisible() {
			m.State = StateBrowsing
		}
		if submitted {
			return m, tea.Batch(cmd, m.submitQuery(m.Omnibar.Query()))
		}
		return m, cmd

	case StateHelp:
		if key.Matches(msg, Keys.Help, Keys.Escape, Keys.Quit) {
			m.State = StateBrowsing
			m.Help.ShowAll = false
		}
		return m, nil
	}

	// The grid filter owns every key while the user is typing
	if m.Focus == PaneGrid && m.Grid.IsFilterTyping() {
		return m.updateGrid(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		m.Help.ShowAll = true
		return m, nil

	case key.Matches(msg, Keys.Search):
		m.State = StateSearching
		m.Omnibar.Show("Search "+catalog.DisplayName(m.Snapshot.Category), m.Snapshot.Query)
		return m, m.Omnibar.Init()

	case key.Matches(msg, Keys.Refresh):
		return m, RefreshCmd(m.ctx, m.catalog)

	case key.Matches(msg, Keys.LoadMore):
		return m, LoadMoreCmd(m.ctx, m.catalog)

	case key.Matches(msg, Keys.Locate):
		if m.location == nil {
			return m, m.setStatus("Location is not configured", true)
		}
		return m, LocateCmd(m.ctx, m.location)

	case key.Matches(msg, Keys.Sort):
		m.Filters = cycleSort(m.Filters, m.origin() != nil)
		m.applySnapshot()
		return m, m.setStatus("Sorted by "+string(m.Filters.SortBy), false)

	case key.Matches(msg, Keys.OpenNow):
		m.Filters.OpenNow = !m.Filters.OpenNow
		m.applySnapshot()
		return m, nil

	case key.Matches(msg, Keys.Inspector):
		m.ShowInspector = !m.ShowInspector
		m.updateLayout()
		return m, nil

	case key.Matches(msg, Keys.Tab):
		next := nextCategory(m.Snapshot.Category)
		m.Sidebar.Select(next)
		return m, m.switchCategory(next)
	}

	if m.Focus == PaneSidebar {
		return m.updateSidebar(msg)
	}
	return m.updateGrid(msg)
}

func (m Model) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Right, Keys.Enter):
		cmd := m.switchCategory(m.Sidebar.SelectedCategory())
		m.setFocus(PaneGrid)
		return m, cmd
	}

	var cmd tea.Cmd
	m.Sidebar, cmd = m.Sidebar.Update(msg)
	return m, cmd
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.Grid.IsFilterTyping() {
		switch {
		case key.Matches(msg, Keys.Left):
			m.setFocus(PaneSidebar)
			return m, nil

		case key.Matches(msg, Keys.Filter):
			if !m.Grid.IsFiltering() {
				m.Grid.ToggleFilter()
				m.updateLayout()
				return m, nil
			}

		case key.Matches(msg, Keys.Escape):
			if !m.Grid.IsFiltering() && m.Snapshot.Query != "" {
				return m, m.submitQuery("")
			}

		case key.Matches(msg, Keys.Favorite):
			item := m.Grid.SelectedItem()
			if item == nil || m.favorites == nil {
				return m, nil
			}
			return m, ToggleFavoriteCmd(m.ctx, m.favorites, *item)

		case key.Matches(msg, Keys.Share):
			item := m.Grid.SelectedItem()
			if item == nil {
				return m, nil
			}
			link, ok := shareLink(m.Snapshot.Category, item.ID)
			if !ok {
				return m, m.setStatus("Only events can be shared", true)
			}
			return m, m.setStatus(link, false)

		case key.Matches(msg, Keys.Browse):
			item := m.Grid.SelectedItem()
			if item == nil {
				return m, nil
			}
			link, ok := shareLink(m.Snapshot.Category, item.ID)
			if !ok {
				return m, m.setStatus("Only events have a web page", true)
			}
			return m, m.openURL(link)

		case key.Matches(msg, Keys.Directions):
			item := m.Grid.SelectedItem()
			if item == nil {
				return m, nil
			}
			link, ok := adapter.DirectionsURL(*item)
			if !ok {
				return m, m.setStatus("No address for "+item.Title, true)
			}
			return m, m.openURL(link)
		}
	}

	var cmd tea.Cmd
	m.Grid, cmd = m.Grid.Update(msg)
	m.syncInspector()
	return m, tea.Batch(cmd, m.prefetch())
}

func (m *Model) openURL(link string) tea.Cmd {
	if m.opener == nil {
		return m.setStatus(link, false)
	}
	return OpenURLCmd(m.opener, link)
}

// shareLink returns the web link of an event. Other categories have no
// public page.
func shareLink(category, id string) (string, bool) {
	if category != catalog.CategoryEvents {
		return "", false
	}
	return deeplink.EventUniversalLink(id), true
}

func nextCategory(current string) string {
	for i, c := range catalog.Categories {
		if c == current {
			return catalog.Categories[(i+1)%len(catalog.Categories)]
		}
	}
	return catalog.Categories[0]
}
