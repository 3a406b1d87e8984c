package source

import (
	"testing"

	"github.com/jewgo/jewgo/internal/adapter"
	"github.com/jewgo/jewgo/internal/adapter/source/jewgo"
	"github.com/jewgo/jewgo/internal/favorites"
	"github.com/jewgo/jewgo/internal/store"
	"github.com/stretchr/testify/require"
)

func TestNewClientFromConfig(t *testing.T) {
	t.Parallel()

	cfg := adapter.DefaultConfig()
	client, err := NewClientFromConfig(cfg, adapter.NullLogger())
	require.NoError(t, err)
	require.False(t, client.Authenticated())

	cfg.Server.URL = ""
	_, err = NewClientFromConfig(cfg, adapter.NullLogger())
	require.Error(t, err)
}

func TestFavoritesSelection(t *testing.T) {
	t.Parallel()

	st, err := store.NewLocalStore("", "")
	require.NoError(t, err)
	defer st.Close()

	guest := jewgo.NewClient("http://localhost", "", adapter.NullLogger())
	require.IsType(t, &favorites.LocalRepository{}, Favorites(guest, st, adapter.NullLogger()))
	require.IsType(t, &favorites.LocalRepository{}, Favorites(nil, st, adapter.NullLogger()))

	signedIn := jewgo.NewClient("http://localhost", "tok", adapter.NullLogger())
	require.Same(t, signedIn, Favorites(signedIn, st, adapter.NullLogger()))

	sources := Sources(signedIn)
	require.NotNil(t, sources.Listings)
	require.NotNil(t, sources.JobSeekers)
}

func TestNewGeocoder(t *testing.T) {
	t.Parallel()

	cfg := adapter.DefaultConfig()
	require.Nil(t, NewGeocoder(cfg, nil))

	cfg.Location.GeocodeAPIKey = "key"
	require.NotNil(t, NewGeocoder(cfg, nil))
}
