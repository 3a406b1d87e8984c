package favorites

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/store"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serverMessage mimics an API rejection that carries its own text
type serverMessage string

func (m serverMessage) Error() string       { return string(m) }
func (m serverMessage) UserMessage() string { return string(m) }

// stubRepo is a server-side favorites list. When err is set every call fails.
type stubRepo struct {
	mu        sync.Mutex
	favs      []domain.Favorite
	err       error
	loads     int
	toggleErr error
	// gate blocks ToggleFavorite until closed
	gate chan struct{}
}

func (s *stubRepo) GetUserFavorites(_ context.Context, limit, offset int) (domain.FavoritesPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return domain.FavoritesPage{}, s.err
	}
	out := make([]domain.Favorite, len(s.favs))
	copy(out, s.favs)
	return domain.FavoritesPage{Favorites: out, Total: len(out), Limit: limit, Offset: offset}, nil
}

func (s *stubRepo) AddToFavorites(_ context.Context, entityID string, _ *domain.CategoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.favs = append(s.favs, domain.Favorite{ID: "f-" + entityID, EntityID: entityID, EntityName: "Server " + entityID})
	return nil
}

func (s *stubRepo) RemoveFromFavorites(_ context.Context, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.removeLocked(entityID)
	return nil
}

func (s *stubRepo) removeLocked(entityID string) {
	kept := s.favs[:0]
	for _, f := range s.favs {
		if f.EntityID != entityID {
			kept = append(kept, f)
		}
	}
	s.favs = kept
}

func (s *stubRepo) ToggleFavorite(ctx context.Context, entityID string, data *domain.CategoryItem) (domain.FavoriteStatus, error) {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.FavoriteStatus{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.FavoriteStatus{}, s.err
	}
	if s.toggleErr != nil {
		return domain.FavoriteStatus{}, s.toggleErr
	}
	for _, f := range s.favs {
		if f.EntityID == entityID {
			s.removeLocked(entityID)
			return domain.FavoriteStatus{EntityID: entityID}, nil
		}
	}
	s.favs = append(s.favs, domain.Favorite{ID: "f-" + entityID, EntityID: entityID})
	return domain.FavoriteStatus{EntityID: entityID, IsFavorited: true}, nil
}

func (s *stubRepo) CheckFavorite(_ context.Context, entityID string) (domain.FavoriteStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.FavoriteStatus{}, s.err
	}
	for _, f := range s.favs {
		if f.EntityID == entityID {
			return domain.FavoriteStatus{EntityID: entityID, IsFavorited: true}, nil
		}
	}
	return domain.FavoriteStatus{EntityID: entityID}, nil
}

func (s *stubRepo) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func TestController_Load(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{favs: []domain.Favorite{{EntityID: "a"}, {EntityID: "b"}}}
	c := NewController(repo, quietLogger())

	c.Load(context.Background())
	snap := c.Snapshot()
	require.Len(t, snap.Favorites, 2)
	require.Equal(t, 2, snap.Count)
	require.Empty(t, snap.Error)
	require.False(t, snap.Loading)
	require.True(t, c.IsFavorited("a"))
	require.False(t, c.IsFavorited("z"))

	repo.err = domain.ErrServerOffline
	c.Load(context.Background())
	snap = c.Snapshot()
	require.Equal(t, "Failed to load favorites", snap.Error)
	require.Len(t, snap.Favorites, 2)
}

func TestController_ToggleOfflineKeepsOptimisticFlag(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{err: domain.ErrServerOffline}
	c := NewController(repo, quietLogger())

	ok := c.Toggle(context.Background(), "id1", nil)
	require.False(t, ok)

	require.True(t, c.IsFavorited("id1"))
	require.Equal(t, 1, c.Count())
	require.Equal(t, "Failed to toggle favorite", c.Snapshot().Error)

	// A later successful load is the only thing that corrects it
	repo.err = nil
	c.Load(context.Background())
	require.False(t, c.IsFavorited("id1"))
	require.Zero(t, c.Count())
}

func TestController_ToggleIsOptimistic(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	repo := &stubRepo{gate: gate}
	c := NewController(repo, quietLogger())

	done := make(chan bool)
	go func() { done <- c.Toggle(context.Background(), "id1", nil) }()

	// Flag and count move before the repository answers
	require.Eventually(t, func() bool { return c.IsFavorited("id1") }, time.Second, time.Millisecond)
	require.Equal(t, 1, c.Count())
	require.Zero(t, repo.loadCount())

	close(gate)
	require.True(t, <-done)

	// Added: the list is reloaded
	snap := c.Snapshot()
	require.Equal(t, 1, repo.loadCount())
	require.Len(t, snap.Favorites, 1)
	require.Equal(t, 1, snap.Count)
}

func TestController_ToggleOffFiltersLocally(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{favs: []domain.Favorite{{EntityID: "a"}, {EntityID: "b"}}}
	c := NewController(repo, quietLogger())
	c.Load(context.Background())
	require.Equal(t, 1, repo.loadCount())

	require.True(t, c.Toggle(context.Background(), "a", nil))

	snap := c.Snapshot()
	require.Equal(t, 1, repo.loadCount(), "removal must not reload")
	require.Len(t, snap.Favorites, 1)
	require.Equal(t, "b", snap.Favorites[0].EntityID)
	require.Equal(t, 1, snap.Count)
	require.False(t, c.IsFavorited("a"))
}

func TestController_ToggleShowsServerMessage(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{toggleErr: serverMessage("Rate limit exceeded. Please try again later.")}
	c := NewController(repo, quietLogger())

	require.False(t, c.Toggle(context.Background(), "x", nil))
	require.Equal(t, "Rate limit exceeded. Please try again later.", c.Snapshot().Error)
}

func TestController_AddRemove(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	c := NewController(repo, quietLogger())
	ctx := context.Background()

	require.True(t, c.Add(ctx, "e1", nil))
	require.True(t, c.IsFavorited("e1"))
	snap := c.Snapshot()
	require.Equal(t, 1, snap.Count)
	require.Equal(t, "Server e1", snap.Favorites[0].EntityName)

	require.True(t, c.Remove(ctx, "e1"))
	require.False(t, c.IsFavorited("e1"))
	require.Zero(t, c.Count())
	require.Empty(t, c.Snapshot().Favorites)

	// Count never goes negative
	require.True(t, c.Remove(ctx, "e1"))
	require.Zero(t, c.Count())

	repo.err = errors.New("boom")
	require.False(t, c.Add(ctx, "e2", nil))
	require.Equal(t, "Failed to add to favorites", c.Snapshot().Error)
	require.False(t, c.IsFavorited("e2"))

	require.False(t, c.Remove(ctx, "e1"))
	require.Equal(t, "Failed to remove from favorites", c.Snapshot().Error)
}

func TestController_Check(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{favs: []domain.Favorite{{EntityID: "a"}}}
	c := NewController(repo, quietLogger())

	require.True(t, c.Check(context.Background(), "a"))
	require.True(t, c.IsFavorited("a"))
	require.False(t, c.Check(context.Background(), "b"))

	repo.err = errors.New("down")
	require.False(t, c.Check(context.Background(), "a"))
	require.True(t, c.IsFavorited("a"))
	require.Empty(t, c.Snapshot().Error)
}

func TestLocalRepository(t *testing.T) {
	t.Parallel()

	st, err := store.NewLocalStore(t.TempDir(), "https://api.jewgo.app")
	require.NoError(t, err)
	defer st.Close()

	repo := NewLocalRepository(st, quietLogger())
	ctx := context.Background()
	rating := 4.5
	item := &domain.CategoryItem{ID: "e1", Title: "Kosher Pizza", EntityType: "restaurant", Category: "Eatery", Rating: &rating, City: "Miami"}

	require.ErrorIs(t, repo.AddToFavorites(ctx, "e1", nil), ErrEntityDataRequired)

	require.NoError(t, repo.AddToFavorites(ctx, "e1", item))
	require.NoError(t, repo.AddToFavorites(ctx, "e1", item))

	page, err := repo.GetUserFavorites(ctx, 50, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	fav := page.Favorites[0]
	require.Equal(t, "local_e1", fav.ID)
	require.Equal(t, "Kosher Pizza", fav.EntityName)
	require.Equal(t, "Eatery", fav.Category)
	require.Equal(t, 4.5, fav.Rating)
	require.True(t, fav.IsActive)

	status, err := repo.CheckFavorite(ctx, "e1")
	require.NoError(t, err)
	require.True(t, status.IsFavorited)

	status, err = repo.ToggleFavorite(ctx, "e1", nil)
	require.NoError(t, err)
	require.False(t, status.IsFavorited)

	status, err = repo.ToggleFavorite(ctx, "e2", &domain.CategoryItem{ID: "e2"})
	require.NoError(t, err)
	require.True(t, status.IsFavorited)

	page, err = repo.GetUserFavorites(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, page.Favorites, 1)
	require.Equal(t, "Unknown", page.Favorites[0].EntityName)
	require.Equal(t, "unknown", page.Favorites[0].EntityType)

	page, err = repo.GetUserFavorites(ctx, 10, 5)
	require.NoError(t, err)
	require.Empty(t, page.Favorites)
	require.Equal(t, 1, page.Total)

	require.NoError(t, repo.Clear())
	page, err = repo.GetUserFavorites(ctx, 50, 0)
	require.NoError(t, err)
	require.Zero(t, page.Total)
}

func TestController_WithLocalRepository(t *testing.T) {
	t.Parallel()

	st, err := store.NewLocalStore("", "")
	require.NoError(t, err)
	c := NewController(NewLocalRepository(st, quietLogger()), quietLogger())
	ctx := context.Background()

	// Guest toggle without listing data fails but keeps the flag
	require.False(t, c.Toggle(ctx, "e1", nil))
	require.Equal(t, "Failed to toggle favorite", c.Snapshot().Error)
	require.True(t, c.IsFavorited("e1"))

	c.Load(ctx)
	require.False(t, c.IsFavorited("e1"))

	require.True(t, c.Toggle(ctx, "e1", &domain.CategoryItem{ID: "e1", Title: "Shul"}))
	snap := c.Snapshot()
	require.Equal(t, 1, snap.Count)
	require.Equal(t, "Shul", snap.Favorites[0].EntityName)
}
