package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jewgo/jewgo/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// RequestKey identifies one page fetch: "{category}-{offset}-{pageSize}".
func RequestKey(category string, offset, pageSize int) string {
	return fmt.Sprintf("%s-%d-%d", category, offset, pageSize)
}

type flight struct {
	started time.Time
}

// Registry guarantees at most one concurrent fetch per key. Callers for a
// key that is already in flight wait for the existing call. Entries are
// dropped when the call settles, so failures are never cached.
type Registry struct {
	group singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		flights: make(map[string]*flight),
		now:     time.Now,
	}
}

// Do runs fn for key unless a call for key is already in flight, in which
// case it waits for that call. The shared call runs detached from the
// caller's cancellation so one caller giving up never fails the others;
// ctx only bounds how long this caller waits.
func (r *Registry) Do(ctx context.Context, key string, fn func(context.Context) (any, error)) (v any, shared bool, err error) {
	detached := context.WithoutCancel(ctx)

	ch := r.group.DoChan(key, func() (any, error) {
		f := &flight{started: r.now()}
		r.mu.Lock()
		r.flights[key] = f
		r.mu.Unlock()

		defer func() {
			r.mu.Lock()
			if r.flights[key] == f {
				delete(r.flights, key)
			}
			r.mu.Unlock()
		}()

		return fn(detached)
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.DedupSharedTotal.Inc()
		}
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Lookup reports whether a call for key is in flight and when it started.
func (r *Registry) Lookup(key string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[key]
	if !ok {
		return time.Time{}, false
	}
	return f.started, true
}

// Release forgets key. The running call is not interrupted, but the next
// caller for key starts a fresh one.
func (r *Registry) Release(key string) {
	r.mu.Lock()
	delete(r.flights, key)
	r.mu.Unlock()
	r.group.Forget(key)
}

// Len returns the number of tracked in-flight calls.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flights)
}

// EvictOlderThan releases every entry started more than maxAge ago and
// returns how many were released.
func (r *Registry) EvictOlderThan(maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge)

	r.mu.Lock()
	var stale []string
	for key, f := range r.flights {
		if f.started.Before(cutoff) {
			stale = append(stale, key)
			delete(r.flights, key)
		}
	}
	r.mu.Unlock()

	for _, key := range stale {
		r.group.Forget(key)
	}
	return len(stale)
}

// ActiveRequests records, per category, the fetch that category most
// recently started. It backs the per-category loading indicator and is
// swept by the reaper alongside the registry.
type ActiveRequests struct {
	mu      sync.Mutex
	entries map[string]activeEntry
	now     func() time.Time
}

type activeEntry struct {
	key     string
	started time.Time
}

// NewActiveRequests creates an empty map.
func NewActiveRequests() *ActiveRequests {
	return &ActiveRequests{
		entries: make(map[string]activeEntry),
		now:     time.Now,
	}
}

// Begin marks key as the active request for category. It reports false
// when the same key is already active, meaning the caller is joining an
// existing fetch rather than starting one.
func (a *ActiveRequests) Begin(category, key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cur, ok := a.entries[category]; ok && cur.key == key {
		return false
	}
	a.entries[category] = activeEntry{key: key, started: a.now()}
	return true
}

// End clears the active request for category if it is still key.
func (a *ActiveRequests) End(category, key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cur, ok := a.entries[category]; ok && cur.key == key {
		delete(a.entries, category)
	}
}

// Active reports whether category has a request in progress.
func (a *ActiveRequests) Active(category string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.entries[category]
	return ok
}

// EvictOlderThan drops entries started more than maxAge ago.
func (a *ActiveRequests) EvictOlderThan(maxAge time.Duration) int {
	cutoff := a.now().Add(-maxAge)
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for category, e := range a.entries {
		if e.started.Before(cutoff) {
			delete(a.entries, category)
			n++
		}
	}
	return n
}
