package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jewgo/jewgo/internal/catalog"
	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/favorites"
	"github.com/jewgo/jewgo/internal/location"
)

// Command factories for async operations. Controller results arrive
// through subscriptions, so most of these return nil.

// MountCmd performs the first load of the controller's category
func MountCmd(ctx context.Context, c *catalog.Controller) tea.Cmd {
	return func() tea.Msg {
		c.Mount(ctx)
		return nil
	}
}

// LoadMoreCmd fetches the next page
func LoadMoreCmd(ctx context.Context, c *catalog.Controller) tea.Cmd {
	return func() tea.Msg {
		c.LoadMore(ctx)
		return nil
	}
}

// RefreshCmd drops the cached entry and reloads page one
func RefreshCmd(ctx context.Context, c *catalog.Controller) tea.Cmd {
	return func() tea.Msg {
		c.Refresh(ctx)
		return nil
	}
}

// LoadFavoritesCmd loads the favorites list
func LoadFavoritesCmd(ctx context.Context, f *favorites.Controller) tea.Cmd {
	return func() tea.Msg {
		f.Load(ctx)
		return FavoritesMsg{Snapshot: f.Snapshot()}
	}
}

// ToggleFavoriteCmd toggles a listing. The flag flips before the request
// resolves, so the grid shows the new heart on the next frame.
func ToggleFavoriteCmd(ctx context.Context, f *favorites.Controller, item domain.CategoryItem) tea.Cmd {
	return func() tea.Msg {
		ok := f.Toggle(ctx, item.ID, &item)
		snap := f.Snapshot()
		return FavoriteToggledMsg{EntityID: item.ID, Title: item.Title, OK: ok, Error: snap.Error}
	}
}

// LocateCmd asks for a single position fix. The result arrives as a
// LocationMsg through the store subscription.
func LocateCmd(ctx context.Context, s *location.Store) tea.Cmd {
	return func() tea.Msg {
		s.CurrentLocation(ctx)
		return nil
	}
}

// URLOpener opens web links outside the terminal
type URLOpener interface {
	Open(url string) error
}

// OpenURLCmd hands a link to the browser
func OpenURLCmd(o URLOpener, url string) tea.Cmd {
	return func() tea.Msg {
		if err := o.Open(url); err != nil {
			return StatusMsg{Message: "Could not open browser: " + err.Error(), IsError: true}
		}
		return StatusMsg{Message: "Opened " + url}
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
