package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jewgo/jewgo/internal/metrics"
)

const (
	DefaultReapInterval = 10 * time.Second
	DefaultStaleAfter   = 30 * time.Second
)

// Reaper periodically evicts in-flight entries that never settled. It does
// not cancel the underlying call; it only unblocks future callers.
type Reaper struct {
	registry   *Registry
	active     *ActiveRequests
	interval   time.Duration
	staleAfter time.Duration
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReaper creates a stopped reaper. Zero durations use the defaults.
func NewReaper(registry *Registry, active *ActiveRequests, interval, staleAfter time.Duration, logger *slog.Logger) *Reaper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Reaper{
		registry:   registry,
		active:     active,
		interval:   interval,
		staleAfter: staleAfter,
		logger:     logger,
	}
}

// Start launches the sweep loop. Calling Start on a running reaper is a no-op.
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx, r.done)
	r.logger.Debug("reaper started", "interval", r.interval, "staleAfter", r.staleAfter)
}

// Stop halts the sweep loop and waits for it to exit.
func (r *Reaper) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.logger.Debug("reaper stopped")
}

// Running reports whether the sweep loop is active.
func (r *Reaper) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Reaper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep evicts every stale entry once and returns the number evicted.
func (r *Reaper) Sweep() int {
	n := 0
	if r.registry != nil {
		n += r.registry.EvictOlderThan(r.staleAfter)
	}
	if r.active != nil {
		n += r.active.EvictOlderThan(r.staleAfter)
	}
	if n > 0 {
		metrics.ReaperEvictionsTotal.Add(float64(n))
		r.logger.Warn("evicted stale requests", "count", n)
	}
	return n
}
