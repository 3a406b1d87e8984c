package tui

import (
	"github.com/jewgo/jewgo/internal/catalog"
	"github.com/jewgo/jewgo/internal/favorites"
	"github.com/jewgo/jewgo/internal/location"
)

// Message types for the TUI

// SnapshotMsg carries the latest state of the listing controller
type SnapshotMsg struct {
	Snapshot catalog.Snapshot
}

// LocationMsg carries the latest location state
type LocationMsg struct {
	State location.State
}

// FavoritesMsg carries the favorites state after a load or toggle
type FavoritesMsg struct {
	Snapshot favorites.Snapshot
}

// FavoriteToggledMsg reports the outcome of a toggle
type FavoriteToggledMsg struct {
	EntityID string
	Title    string
	OK       bool
	Error    string
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
