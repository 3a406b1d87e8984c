package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jewgo/jewgo/internal/domain"
)

// EventsPageSize is the fixed page size of the events feed
const EventsPageSize = 20

// EventsSnapshot is the view-facing state of an EventsController
type EventsSnapshot struct {
	Events     []domain.Event
	Page       int
	HasMore    bool
	Loading    bool
	Refreshing bool
	Error      string
}

// EventsController pages the events feed by page number. Every fetch
// supersedes the previous one: the older request is cancelled and its
// result is dropped even if it arrives.
type EventsController struct {
	repo   domain.EventsRepository
	logger *slog.Logger

	mu         sync.Mutex
	query      string
	filters    domain.EventFilters
	events     []domain.Event
	page       int
	hasMore    bool
	loading    bool
	refreshing bool
	err        string
	fetching   bool
	lastParams string
	seq        uint64
	cancel     context.CancelFunc
}

// NewEventsController creates an events controller.
func NewEventsController(repo domain.EventsRepository, logger *slog.Logger) *EventsController {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsController{
		repo:    repo,
		logger:  logger.With("category", CategoryEvents),
		page:    1,
		hasMore: true,
	}
}

// SetQuery sets the search text and reloads page 1 if it changed.
func (e *EventsController) SetQuery(ctx context.Context, query string) {
	e.mu.Lock()
	changed := e.query != query
	e.query = query
	e.mu.Unlock()
	if changed {
		e.Fetch(ctx, 1, false)
	}
}

// SetFilters replaces the extra filters and reloads page 1. Paging and
// sort fields of filters are ignored.
func (e *EventsController) SetFilters(ctx context.Context, filters domain.EventFilters) {
	e.mu.Lock()
	e.filters = filters
	e.mu.Unlock()
	e.Fetch(ctx, 1, false)
}

// LoadMore fetches the page after the current one.
func (e *EventsController) LoadMore(ctx context.Context) {
	e.mu.Lock()
	if !e.hasMore || e.fetching {
		e.mu.Unlock()
		return
	}
	next := e.page + 1
	e.mu.Unlock()
	e.Fetch(ctx, next, false)
}

// Refresh reloads page 1 and replaces the list.
func (e *EventsController) Refresh(ctx context.Context) {
	e.Fetch(ctx, 1, true)
}

// Fetch loads page. A request identical to the last one is skipped unless
// it is a refresh or a load-more.
func (e *EventsController) Fetch(ctx context.Context, page int, refresh bool) {
	loadMore := page > 1

	e.mu.Lock()
	filters := e.filters
	filters.Page = page
	filters.Limit = EventsPageSize
	filters.SortBy = "event_date"
	filters.SortOrder = "ASC"
	filters.Search = e.query
	params := paramsKey(filters)

	if !refresh && !loadMore && params == e.lastParams {
		e.mu.Unlock()
		return
	}
	// A running fetch blocks refreshes and load-mores; new parameters
	// supersede it instead.
	if e.fetching && (refresh || loadMore) {
		e.mu.Unlock()
		return
	}

	if e.cancel != nil {
		e.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.seq++
	seq := e.seq

	e.fetching = true
	e.lastParams = params
	if refresh {
		e.refreshing = true
	} else {
		e.loading = true
	}
	e.err = ""
	e.mu.Unlock()

	res, err := e.repo.GetEvents(fctx, filters)
	aborted := fctx.Err() != nil
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.seq {
		e.logger.Debug("events fetch superseded", "page", page)
		return
	}
	e.fetching = false
	e.loading = false
	e.refreshing = false

	if aborted {
		e.logger.Debug("events fetch aborted", "page", page)
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		e.logger.Error("failed to fetch events", "error", err, "page", page)
		e.err = err.Error()
		if e.err == "" {
			e.err = "Failed to load events. Please try again."
		}
		return
	}

	if refresh || page == 1 {
		e.events = append([]domain.Event(nil), res.Events...)
	} else {
		e.events = append(e.events, res.Events...)
	}
	e.hasMore = len(res.Events) == EventsPageSize
	e.page = page
	e.logger.Debug("events fetched", "count", len(res.Events), "page", page, "hasMore", e.hasMore)
}

// Close cancels any in-flight fetch.
func (e *EventsController) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	e.seq++
	e.fetching = false
	e.loading = false
	e.refreshing = false
}

// Snapshot returns a copy of the current state.
func (e *EventsController) Snapshot() EventsSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	events := make([]domain.Event, len(e.events))
	copy(events, e.events)
	return EventsSnapshot{
		Events:     events,
		Page:       e.page,
		HasMore:    e.hasMore,
		Loading:    e.loading,
		Refreshing: e.refreshing,
		Error:      e.err,
	}
}

// Items renders the current events as grid items.
func (e *EventsController) Items() []domain.CategoryItem {
	snap := e.Snapshot()
	items := make([]domain.CategoryItem, 0, len(snap.Events))
	for _, ev := range snap.Events {
		if item, err := TransformEvent(ev); err == nil {
			items = append(items, item)
		}
	}
	return items
}

func paramsKey(f domain.EventFilters) string {
	return fmt.Sprintf("%+v", f)
}
