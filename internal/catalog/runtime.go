package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/search"
)

// DefaultPageSize is the page size used when a controller asks for none.
const DefaultPageSize = 20

// ErrSourceUnavailable is returned when a category's backing repository
// was not configured.
var ErrSourceUnavailable = errors.New("no source configured for category")

// Sources are the repositories the catalog pages from. Any may be nil; a
// category whose source is nil fails its loads with ErrSourceUnavailable.
type Sources struct {
	Listings   domain.ListingRepository
	Specials   domain.SpecialsRepository
	Events     domain.EventsRepository
	JobSeekers domain.JobSeekersRepository
}

// Config tunes a Runtime. Zero values use the defaults.
type Config struct {
	PageSize     int
	ReapInterval time.Duration
	StaleAfter   time.Duration
	// Store, when set, persists cache entries across restarts.
	Store domain.Store
}

// Runtime is the shared state every controller in the process works
// against: the in-flight registry, the active request map, the page cache
// and the reaper sweeping them. The application root owns its lifecycle.
type Runtime struct {
	Registry *Registry
	Active   *ActiveRequests
	Cache    *Cache
	Reaper   *Reaper

	sources  Sources
	pageSize int
	logger   *slog.Logger
}

// NewRuntime wires a runtime. The reaper is not started until Foreground.
func NewRuntime(sources Sources, cfg Config, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	registry := NewRegistry()
	active := NewActiveRequests()

	return &Runtime{
		Registry: registry,
		Active:   active,
		Cache:    NewCache(cfg.Store, logger),
		Reaper:   NewReaper(registry, active, cfg.ReapInterval, cfg.StaleAfter, logger),
		sources:  sources,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Foreground starts the reaper. Call when the application becomes active.
func (r *Runtime) Foreground(ctx context.Context) {
	r.Reaper.Start(ctx)
}

// Background stops the reaper. Call when the application is suspended.
func (r *Runtime) Background() {
	r.Reaper.Stop()
}

// Close releases the runtime's background work.
func (r *Runtime) Close() {
	r.Reaper.Stop()
}

// Loading reports whether category has a fetch in progress anywhere in
// the process.
func (r *Runtime) Loading(category string) bool {
	return r.Active.Active(category)
}

// page is the shared result of one page fetch. Items are already
// transformed; Raw is how many records the backend returned, which is
// what paging decisions are based on.
type page struct {
	Items []domain.CategoryItem
	Raw   int
	// Stop means the backend asked the client to stop paging this category.
	Stop bool
	// Searched means the backend applied the query itself.
	Searched bool
}

// fetchPage loads one page through the registry, so concurrent callers
// asking for the same page share a single request.
func (r *Runtime) fetchPage(ctx context.Context, category, query string, offset, size int) (page, error) {
	keyCategory := category
	if category == CategoryEvents && query != "" {
		// Events are searched server side, so the query is part of the page identity
		keyCategory = category + ":" + query
	}
	key := RequestKey(keyCategory, offset, size)

	if r.Active.Begin(category, key) {
		defer r.Active.End(category, key)
	} else {
		r.logger.Debug("joining active request", "category", category, "key", key)
	}

	v, shared, err := r.Registry.Do(ctx, key, func(ctx context.Context) (any, error) {
		return r.fetchRaw(ctx, category, query, offset, size)
	})
	if err != nil {
		return page{}, err
	}
	if shared {
		r.logger.Debug("shared in-flight request", "key", key)
	}

	p := v.(page)
	if !p.Searched {
		p.Items = search.Filter(p.Items, query)
	}
	return p, nil
}

func (r *Runtime) fetchRaw(ctx context.Context, category, query string, offset, size int) (page, error) {
	pageNum := offset/size + 1

	switch category {
	case CategorySpecials:
		if r.sources.Specials == nil {
			return page{}, ErrSourceUnavailable
		}
		specials, err := r.sources.Specials.GetActiveSpecials(ctx, pageNum, size)
		if err != nil {
			return page{}, err
		}
		items := make([]domain.CategoryItem, 0, len(specials))
		for _, s := range specials {
			item, err := TransformSpecial(s)
			if err != nil {
				r.logger.Warn("dropping invalid special", "error", err)
				continue
			}
			items = append(items, item)
		}
		return page{Items: items, Raw: len(specials)}, nil

	case CategoryEvents:
		if r.sources.Events == nil {
			return page{}, ErrSourceUnavailable
		}
		res, err := r.sources.Events.GetEvents(ctx, domain.EventFilters{
			Page:      pageNum,
			Limit:     size,
			SortBy:    "event_date",
			SortOrder: "ASC",
			Search:    query,
		})
		if err != nil {
			return page{}, err
		}
		items := make([]domain.CategoryItem, 0, len(res.Events))
		for _, ev := range res.Events {
			item, err := TransformEvent(ev)
			if err != nil {
				r.logger.Warn("dropping invalid event", "error", err)
				continue
			}
			items = append(items, item)
		}
		return page{Items: items, Raw: len(res.Events), Searched: true}, nil

	default:
		if r.sources.Listings == nil {
			return page{}, ErrSourceUnavailable
		}
		res, err := r.sources.Listings.GetListingsByCategory(ctx, EntityType(category), size, offset)
		if err != nil {
			return page{}, err
		}
		if res.RedirectTo == CategorySpecials {
			r.logger.Info("listings redirected", "category", category, "redirectTo", res.RedirectTo)
			return page{Stop: true}, nil
		}
		return page{
			Items: TransformAll(res.Listings, category, r.logger),
			Raw:   len(res.Listings),
		}, nil
	}
}

// NewController creates a controller for opts bound to this runtime. The
// controller starts from the cached entry for (category, query) when one
// exists.
func (r *Runtime) NewController(opts Options) *Controller {
	return newController(r, opts)
}
