package domain

import (
	"context"
	"time"
)

// ListingsPage is one page from the generic listings endpoint.
// RedirectTo is set when the backend wants the client to use another
// vertical instead ("specials").
type ListingsPage struct {
	Listings   []Listing
	RedirectTo string
}

// ListingRepository: network paging for generic categories
type ListingRepository interface {
	GetListingsByCategory(ctx context.Context, category string, limit, offset int) (ListingsPage, error)
}

// SpecialsRepository: network paging for the specials vertical
type SpecialsRepository interface {
	GetActiveSpecials(ctx context.Context, page, limit int) ([]ActiveSpecial, error)
}

// EventsRepository: network paging for the events vertical
type EventsRepository interface {
	GetEvents(ctx context.Context, filters EventFilters) (EventsPage, error)
}

// JobSeekersRepository: network paging for the jobs "seeking" mode
type JobSeekersRepository interface {
	GetJobSeekers(ctx context.Context, params JobSeekerParams) ([]JobSeeker, error)
}

// FavoritesRepository: favorites CRUD (remote or local)
type FavoritesRepository interface {
	GetUserFavorites(ctx context.Context, limit, offset int) (FavoritesPage, error)
	AddToFavorites(ctx context.Context, entityID string, data *CategoryItem) error
	RemoveFromFavorites(ctx context.Context, entityID string) error
	ToggleFavorite(ctx context.Context, entityID string, data *CategoryItem) (FavoriteStatus, error)
	CheckFavorite(ctx context.Context, entityID string) (FavoriteStatus, error)
}

// Geocoder resolves a coordinate to a postal address
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error)
}

// PermissionStatus is the outcome of a location permission prompt
type PermissionStatus int

const (
	PermissionGranted PermissionStatus = iota
	PermissionDenied
	PermissionBlocked // "never ask again"
)

// PositionOptions mirrors the knobs a platform location API accepts
type PositionOptions struct {
	HighAccuracy   bool
	Timeout        time.Duration
	MaximumAge     time.Duration
	DistanceFilter float64 // meters, watch only
	Interval       time.Duration
}

// PositionUpdate is one delivery from a position watch
type PositionUpdate struct {
	Location Location
	Err      error
}

// PositionProvider is the platform location service.
// CurrentPosition returns ErrPermissionDenied, ErrPositionUnavailable or
// ErrTimeout (possibly wrapped) on failure.
type PositionProvider interface {
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	CurrentPosition(ctx context.Context, opts PositionOptions) (Location, error)
	WatchPosition(ctx context.Context, opts PositionOptions) (<-chan PositionUpdate, error)
}

// AuthResult contains the session obtained from a successful login
type AuthResult struct {
	Token        string
	RefreshToken string
	UserID       string
	Email        string
}
