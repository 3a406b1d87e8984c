package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jewgo/jewgo/internal/domain"
)

// Options configures a Controller
type Options struct {
	Category string
	Query    string
	PageSize int // 0 = runtime default
}

// Snapshot is the view-facing state of a Controller
type Snapshot struct {
	Category    string
	Query       string
	Data        []domain.CategoryItem
	CurrentPage int
	HasMore     bool
	Loading     bool
	Refreshing  bool
	Error       string // empty when the last load succeeded
}

// Controller pages one (category, query) pair into an accumulating list.
// It never returns errors: a failed load is reported through
// Snapshot().Error. Every fetch runs under the controller's current
// generation; changing category or query starts a new generation and
// results from the old one are dropped.
type Controller struct {
	rt       *Runtime
	logger   *slog.Logger
	pageSize int

	mu          sync.Mutex
	category    string
	query       string
	data        []domain.CategoryItem
	ids         map[string]struct{}
	currentPage int
	hasMore     bool
	loading     bool
	refreshing  bool
	err         string

	gen       uint64
	genCtx    context.Context
	genCancel context.CancelFunc
	closed    bool

	subs   map[int]chan Snapshot
	nextID int
}

func newController(rt *Runtime, opts Options) *Controller {
	size := opts.PageSize
	if size <= 0 {
		size = rt.pageSize
	}
	c := &Controller{
		rt:       rt,
		logger:   rt.logger.With("category", opts.Category),
		pageSize: size,
		category: opts.Category,
		query:    opts.Query,
		subs:     make(map[int]chan Snapshot),
	}
	c.genCtx, c.genCancel = context.WithCancel(context.Background())
	c.restoreLocked()
	return c
}

// restoreLocked loads the cached entry for the current key or resets to page 1.
func (c *Controller) restoreLocked() {
	c.err = ""
	c.loading = false
	c.refreshing = false

	if e, ok := c.rt.Cache.Get(c.category, c.query); ok {
		c.setDataLocked(e.Data)
		c.currentPage = e.CurrentPage
		c.hasMore = e.HasMore
		return
	}
	c.setDataLocked(nil)
	c.currentPage = 1
	c.hasMore = true
}

func (c *Controller) setDataLocked(items []domain.CategoryItem) {
	c.data = make([]domain.CategoryItem, 0, len(items))
	c.ids = make(map[string]struct{}, len(items))
	c.appendLocked(items)
}

// appendLocked appends items whose ids are not already present and
// returns how many were added.
func (c *Controller) appendLocked(items []domain.CategoryItem) int {
	added := 0
	for _, item := range items {
		if _, dup := c.ids[item.ID]; dup {
			continue
		}
		c.ids[item.ID] = struct{}{}
		c.data = append(c.data, item)
		added++
	}
	return added
}

func (c *Controller) writeCacheLocked() {
	c.rt.Cache.Set(c.category, c.query, Entry{
		Data:        c.data,
		CurrentPage: c.currentPage,
		HasMore:     c.hasMore,
	})
}

// fetchContext derives the context for one fetch: cancelled when either
// the generation ends or the caller's ctx is done.
func fetchContext(ctx, genCtx context.Context) (context.Context, context.CancelFunc) {
	fctx, cancel := context.WithCancel(genCtx)
	stop := context.AfterFunc(ctx, cancel)
	return fctx, func() {
		stop()
		cancel()
	}
}

// Mount performs the initial load when the controller has no data. A
// controller restored from cache does nothing.
func (c *Controller) Mount(ctx context.Context) {
	c.mu.Lock()
	empty := len(c.data) == 0 && !c.loading && !c.refreshing
	c.mu.Unlock()
	if empty {
		c.LoadMore(ctx)
	}
}

// LoadMore fetches the next page and appends it. It is a no-op while a
// load or refresh is in progress or once the end has been reached.
func (c *Controller) LoadMore(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.loading || c.refreshing || !c.hasMore {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.err = ""
	gen, genCtx := c.gen, c.genCtx
	category, query, pageNum := c.category, c.query, c.currentPage
	c.publishLocked()
	c.mu.Unlock()

	offset := (pageNum - 1) * c.pageSize
	fctx, cancel := fetchContext(ctx, genCtx)
	p, err := c.rt.fetchPage(fctx, category, query, offset, c.pageSize)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.logger.Debug("discarding superseded page", "page", pageNum)
		return
	}
	c.loading = false

	switch {
	case err != nil && errors.Is(err, context.Canceled):
		c.logger.Debug("page load cancelled", "page", pageNum)
	case err != nil:
		c.logger.Error("failed to load page", "error", err, "page", pageNum, "query", query)
		c.err = ErrorMessage(category, err)
		c.hasMore = false
	case p.Stop:
		c.hasMore = false
		c.writeCacheLocked()
	default:
		added := c.appendLocked(p.Items)
		if p.Raw > 0 {
			c.currentPage++
		}
		c.hasMore = p.Raw >= c.pageSize
		c.writeCacheLocked()
		c.logger.Debug("loaded page", "page", pageNum, "received", p.Raw, "added", added, "total", len(c.data))
	}
	c.publishLocked()
}

// Refresh discards the cached entry and reloads page 1, replacing the
// list. It is a no-op while a load is in progress.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.loading || c.refreshing {
		c.mu.Unlock()
		return
	}
	c.refreshing = true
	c.err = ""
	gen, genCtx := c.gen, c.genCtx
	category, query := c.category, c.query
	c.publishLocked()
	c.mu.Unlock()

	c.rt.Cache.Delete(category, query)

	fctx, cancel := fetchContext(ctx, genCtx)
	p, err := c.rt.fetchPage(fctx, category, query, 0, c.pageSize)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	c.refreshing = false

	switch {
	case err != nil && errors.Is(err, context.Canceled):
		c.logger.Debug("refresh cancelled")
	case err != nil:
		c.logger.Error("failed to refresh", "error", err, "query", query)
		c.err = ErrorMessage(category, err)
	default:
		c.setDataLocked(p.Items)
		c.currentPage = 2
		c.hasMore = !p.Stop && p.Raw >= c.pageSize
		c.writeCacheLocked()
		c.logger.Debug("refreshed", "received", p.Raw, "total", len(c.data))
	}
	c.publishLocked()
}

// SetQuery switches the controller to a new query.
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || query == c.query {
		return
	}
	c.query = query
	c.resetLocked()
}

// SetCategory switches the controller to a new category.
func (c *Controller) SetCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || category == c.category {
		return
	}
	c.category = category
	c.logger = c.rt.logger.With("category", category)
	c.resetLocked()
}

// resetLocked ends the current generation, cancelling its fetches, and
// restores state for the new key.
func (c *Controller) resetLocked() {
	c.genCancel()
	c.gen++
	c.genCtx, c.genCancel = context.WithCancel(context.Background())
	c.restoreLocked()
	c.publishLocked()
}

// Close cancels any in-flight fetch and closes all subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.genCancel()
	c.gen++
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	data := make([]domain.CategoryItem, len(c.data))
	copy(data, c.data)
	return Snapshot{
		Category:    c.category,
		Query:       c.query,
		Data:        data,
		CurrentPage: c.currentPage,
		HasMore:     c.hasMore,
		Loading:     c.loading,
		Refreshing:  c.refreshing,
		Error:       c.err,
	}
}

// Subscribe returns a channel that receives the latest snapshot after
// every state change. Slow readers only miss intermediate states. The
// returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			close(sub)
			delete(c.subs, id)
		}
	}
}

func (c *Controller) publishLocked() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// Drop the stale value and replace it
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
