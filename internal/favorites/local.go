package favorites

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jewgo/jewgo/internal/domain"
)

// ErrEntityDataRequired is returned when a guest favorite is added without
// the listing it refers to
var ErrEntityDataRequired = errors.New("entity data required for guest favorites")

const localIDPrefix = "local_"

// LocalRepository keeps a signed-out user's favorites in the local store.
// It implements domain.FavoritesRepository so the controller does not care
// which one it talks to.
type LocalRepository struct {
	store  domain.Store
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

func NewLocalRepository(store domain.Store, logger *slog.Logger) *LocalRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalRepository{store: store, logger: logger, now: time.Now}
}

func (r *LocalRepository) load() []domain.Favorite {
	favs, ok := r.store.GetLocalFavorites()
	if !ok {
		return nil
	}
	return favs
}

func (r *LocalRepository) GetUserFavorites(_ context.Context, limit, offset int) (domain.FavoritesPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.load()
	start := min(max(offset, 0), len(all))
	end := len(all)
	if limit > 0 {
		end = min(start+limit, len(all))
	}
	return domain.FavoritesPage{
		Favorites: slices.Clone(all[start:end]),
		Total:     len(all),
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func (r *LocalRepository) AddToFavorites(_ context.Context, entityID string, data *domain.CategoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(entityID, data)
}

func (r *LocalRepository) addLocked(entityID string, data *domain.CategoryItem) error {
	all := r.load()
	if slices.ContainsFunc(all, func(f domain.Favorite) bool { return f.EntityID == entityID }) {
		return nil
	}
	if data == nil {
		return ErrEntityDataRequired
	}

	all = append(all, fromItem(entityID, data, r.now()))
	if err := r.store.SaveLocalFavorites(all); err != nil {
		r.logger.Error("failed to save local favorites", "error", err)
		return err
	}
	r.logger.Debug("added local favorite", "entity", entityID)
	return nil
}

func (r *LocalRepository) RemoveFromFavorites(_ context.Context, entityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(entityID)
}

func (r *LocalRepository) removeLocked(entityID string) error {
	all := slices.DeleteFunc(r.load(), func(f domain.Favorite) bool { return f.EntityID == entityID })
	if err := r.store.SaveLocalFavorites(all); err != nil {
		r.logger.Error("failed to save local favorites", "error", err)
		return err
	}
	r.logger.Debug("removed local favorite", "entity", entityID)
	return nil
}

func (r *LocalRepository) ToggleFavorite(_ context.Context, entityID string, data *domain.CategoryItem) (domain.FavoriteStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.containsLocked(entityID) {
		if err := r.removeLocked(entityID); err != nil {
			return domain.FavoriteStatus{}, err
		}
		return domain.FavoriteStatus{EntityID: entityID}, nil
	}
	if err := r.addLocked(entityID, data); err != nil {
		return domain.FavoriteStatus{}, err
	}
	return domain.FavoriteStatus{EntityID: entityID, IsFavorited: true, FavoritedAt: r.now()}, nil
}

func (r *LocalRepository) CheckFavorite(_ context.Context, entityID string) (domain.FavoriteStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.load() {
		if f.EntityID == entityID {
			return domain.FavoriteStatus{EntityID: entityID, IsFavorited: true, FavoritedAt: f.FavoritedAt}, nil
		}
	}
	return domain.FavoriteStatus{EntityID: entityID}, nil
}

func (r *LocalRepository) containsLocked(entityID string) bool {
	return slices.ContainsFunc(r.load(), func(f domain.Favorite) bool { return f.EntityID == entityID })
}

// Clear drops every local favorite, e.g. after signing in.
func (r *LocalRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.SaveLocalFavorites(nil)
}

func fromItem(entityID string, item *domain.CategoryItem, at time.Time) domain.Favorite {
	category := item.Category
	if category == "" {
		category = item.EntityType
	}
	entityType := item.EntityType
	if entityType == "" {
		entityType = "unknown"
	}
	name := item.Title
	if name == "" {
		name = "Unknown"
	}
	return domain.Favorite{
		ID:          localIDPrefix + entityID,
		EntityID:    entityID,
		EntityName:  name,
		EntityType:  entityType,
		Description: item.Description,
		Address:     item.Address,
		City:        item.City,
		State:       item.State,
		Rating:      item.RatingValue(),
		ReviewCount: item.ReviewCount,
		IsActive:    true,
		ImageURL:    item.ImageURL,
		FavoritedAt: at,
		Category:    category,
	}
}
