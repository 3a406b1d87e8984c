package favorites

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/jewgo/jewgo/internal/domain"
)

// LoadLimit is how many favorites a full load requests
const LoadLimit = 100

// User-facing error messages
const (
	msgLoad   = "Failed to load favorites"
	msgAdd    = "Failed to add to favorites"
	msgRemove = "Failed to remove from favorites"
	msgToggle = "Failed to toggle favorite"
)

// Snapshot is what a favorites screen renders
type Snapshot struct {
	Favorites []domain.Favorite
	Count     int
	Loading   bool
	Error     string
}

// Controller keeps the favorites list, the per-entity favorited flags and
// the count.
//
// Toggle flips the flag and count before the request resolves and does
// not roll them back when it fails: the error is reported and the next
// Load reconciles with the server.
type Controller struct {
	repo   domain.FavoritesRepository
	logger *slog.Logger

	mu        sync.Mutex
	favorites []domain.Favorite
	statuses  map[string]bool
	count     int
	loading   bool
	errMsg    string
}

func NewController(repo domain.FavoritesRepository, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		repo:     repo,
		logger:   logger,
		statuses: make(map[string]bool),
	}
}

// userMessenger is implemented by errors that carry a message meant for the user
type userMessenger interface {
	UserMessage() string
}

// failure picks the message shown for err: what the server said when the
// API rejected the call, the fallback otherwise.
func failure(err error, fallback string) string {
	var m userMessenger
	if errors.As(err, &m) && m.UserMessage() != "" {
		return m.UserMessage()
	}
	return fallback
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Favorites: slices.Clone(c.favorites),
		Count:     c.count,
		Loading:   c.loading,
		Error:     c.errMsg,
	}
}

// IsFavorited returns the locally known flag for an entity.
func (c *Controller) IsFavorited(entityID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses[entityID]
}

// Count returns the locally known favorites count.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Load replaces the list, count and flags with the server's view.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	page, err := c.repo.GetUserFavorites(ctx, LoadLimit, 0)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.logger.Error("failed to load favorites", "error", err)
		c.errMsg = msgLoad
		return
	}

	c.favorites = page.Favorites
	c.count = page.Total
	c.statuses = make(map[string]bool, len(page.Favorites))
	for _, f := range page.Favorites {
		c.statuses[f.EntityID] = true
	}
	c.logger.Debug("loaded favorites", "count", len(page.Favorites), "total", page.Total)
}

// Add favorites an entity. On success the flag and count are set and the
// list is reloaded to pick up server-side fields.
func (c *Controller) Add(ctx context.Context, entityID string, data *domain.CategoryItem) bool {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()

	if err := c.repo.AddToFavorites(ctx, entityID, data); err != nil {
		c.logger.Error("failed to add favorite", "error", err, "entity", entityID)
		c.setError(failure(err, msgAdd))
		return false
	}

	c.mu.Lock()
	c.statuses[entityID] = true
	c.count++
	c.mu.Unlock()

	c.Load(ctx)
	return true
}

// Remove unfavorites an entity and drops it from the list without a reload.
func (c *Controller) Remove(ctx context.Context, entityID string) bool {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()

	if err := c.repo.RemoveFromFavorites(ctx, entityID); err != nil {
		c.logger.Error("failed to remove favorite", "error", err, "entity", entityID)
		c.setError(failure(err, msgRemove))
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[entityID] = false
	c.count = max(0, c.count-1)
	c.dropLocked(entityID)
	return true
}

// Toggle flips an entity's flag and count immediately, then asks the
// repository. On success the flag follows the server's answer and the list
// is reloaded (now favorited) or filtered (no longer favorited). On failure
// the flipped flag stays and Error is set.
func (c *Controller) Toggle(ctx context.Context, entityID string, data *domain.CategoryItem) bool {
	c.mu.Lock()
	c.errMsg = ""
	optimistic := !c.statuses[entityID]
	c.applyLocked(entityID, optimistic)
	c.mu.Unlock()

	status, err := c.repo.ToggleFavorite(ctx, entityID, data)
	if err != nil {
		c.logger.Error("failed to toggle favorite", "error", err, "entity", entityID)
		c.setError(failure(err, msgToggle))
		return false
	}

	c.mu.Lock()
	if status.IsFavorited != optimistic {
		c.applyLocked(entityID, status.IsFavorited)
	}
	if !status.IsFavorited {
		c.dropLocked(entityID)
	}
	c.mu.Unlock()

	if status.IsFavorited {
		c.Load(ctx)
	}
	return true
}

// Check asks the repository for an entity's flag and records it.
// Failures return false without touching Error.
func (c *Controller) Check(ctx context.Context, entityID string) bool {
	status, err := c.repo.CheckFavorite(ctx, entityID)
	if err != nil {
		c.logger.Debug("failed to check favorite", "error", err, "entity", entityID)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[entityID] = status.IsFavorited
	return status.IsFavorited
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
}

// applyLocked sets a flag and moves the count with it.
func (c *Controller) applyLocked(entityID string, favorited bool) {
	if c.statuses[entityID] == favorited {
		return
	}
	c.statuses[entityID] = favorited
	if favorited {
		c.count++
	} else {
		c.count = max(0, c.count-1)
	}
}

func (c *Controller) dropLocked(entityID string) {
	c.favorites = slices.DeleteFunc(c.favorites, func(f domain.Favorite) bool {
		return f.EntityID == entityID
	})
}
