package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jewgo/jewgo/internal/catalog"
	"github.com/jewgo/jewgo/internal/location"
)

// listen turns one receive from a subscription channel into a message.
// The Update loop re-arms it after every delivery. A closed channel ends
// the loop by returning nil.
func listen[T any](ch <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(v)
	}
}

func waitForSnapshot(ch <-chan catalog.Snapshot) tea.Cmd {
	return listen(ch, func(s catalog.Snapshot) tea.Msg { return SnapshotMsg{Snapshot: s} })
}

func waitForLocation(ch <-chan location.State) tea.Cmd {
	return listen(ch, func(s location.State) tea.Msg { return LocationMsg{State: s} })
}
