package source

import (
	"fmt"
	"log/slog"

	"github.com/jewgo/jewgo/internal/adapter"
	"github.com/jewgo/jewgo/internal/adapter/source/geocode"
	"github.com/jewgo/jewgo/internal/adapter/source/jewgo"
	"github.com/jewgo/jewgo/internal/catalog"
	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/favorites"
)

// Backend combines every repository the Jewgo API serves.
type Backend interface {
	domain.ListingRepository
	domain.SpecialsRepository
	domain.EventsRepository
	domain.JobSeekersRepository
	domain.FavoritesRepository
}

var _ Backend = (*jewgo.Client)(nil)

// NewClient creates the API client for a server URL and optional token.
func NewClient(url, token string, logger *slog.Logger) (*jewgo.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	return jewgo.NewClient(url, token, logger), nil
}

// NewClientFromConfig creates the API client from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (*jewgo.Client, error) {
	return NewClient(cfg.Server.URL, cfg.Server.Token, logger)
}

// Sources wires the catalog to the API client
func Sources(b Backend) catalog.Sources {
	return catalog.Sources{
		Listings:   b,
		Specials:   b,
		Events:     b,
		JobSeekers: b,
	}
}

// Favorites picks where favorites live: on the server when signed in,
// in the local store for guests.
func Favorites(client *jewgo.Client, store domain.Store, logger *slog.Logger) domain.FavoritesRepository {
	if client != nil && client.Authenticated() {
		return client
	}
	return favorites.NewLocalRepository(store, logger)
}

// NewGeocoder returns the reverse geocoder, or nil when no key is set.
// A nil Geocoder leaves locations without zip or city.
func NewGeocoder(cfg *adapter.Config, logger *slog.Logger) domain.Geocoder {
	if cfg.Location.GeocodeAPIKey == "" {
		return nil
	}
	return geocode.NewClient(geocode.DefaultBaseURL, cfg.Location.GeocodeAPIKey, logger)
}
