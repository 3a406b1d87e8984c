package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRequestKey(t *testing.T) {
	t.Parallel()
	require.Equal(t, "mikvah-20-20", RequestKey("mikvah", 20, 20))
}

func TestRegistry_ConcurrentCallersShareOneCall(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	gate := make(chan struct{})
	var calls atomic.Int32

	fn := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-gate
		return "page", nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]any, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = r.Do(context.Background(), "jobs-0-20", fn)
		}(i)
	}

	require.Eventually(t, func() bool {
		_, ok := r.Lookup("jobs-0-20")
		return ok
	}, time.Second, time.Millisecond)
	// Give the remaining callers time to join the flight
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	for i, v := range results {
		require.NoError(t, errs[i])
		require.Equal(t, "page", v)
	}
	require.Zero(t, r.Len())
}

func TestRegistry_FailuresAreNotCached(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var calls atomic.Int32
	boom := errors.New("boom")

	fn := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	_, _, err := r.Do(context.Background(), "k", fn)
	require.ErrorIs(t, err, boom)

	v, _, err := r.Do(context.Background(), "k", fn)
	require.NoError(t, err)
	require.Equal(t, "ok", v)
	require.EqualValues(t, 2, calls.Load())
}

func TestRegistry_CallerCancelDoesNotFailSharedCall(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	gate := make(chan struct{})
	fn := func(ctx context.Context) (any, error) {
		select {
		case <-gate:
			return "done", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, _, err := r.Do(ctx, "k", fn)
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		_, ok := r.Lookup("k")
		return ok
	}, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	// The underlying call keeps running and a second caller can join it
	resCh := make(chan any, 1)
	go func() {
		v, _, _ := r.Do(context.Background(), "k", fn)
		resCh <- v
	}()
	time.Sleep(20 * time.Millisecond)
	close(gate)
	require.Equal(t, "done", <-resCh)
}

func TestRegistry_EvictOlderThan(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	r := NewRegistry()
	r.now = clock.Now

	gate := make(chan struct{})
	defer close(gate)

	var calls atomic.Int32
	fn := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			<-gate
			return "stuck", nil
		}
		return "fresh", nil
	}

	go r.Do(context.Background(), "shul-0-20", fn)
	require.Eventually(t, func() bool {
		_, ok := r.Lookup("shul-0-20")
		return ok
	}, time.Second, time.Millisecond)

	clock.Advance(10 * time.Second)
	require.Zero(t, r.EvictOlderThan(30*time.Second))

	clock.Advance(21 * time.Second)
	require.Equal(t, 1, r.EvictOlderThan(30*time.Second))

	_, ok := r.Lookup("shul-0-20")
	require.False(t, ok)

	// A new caller is no longer blocked behind the stuck call
	v, _, err := r.Do(context.Background(), "shul-0-20", fn)
	require.NoError(t, err)
	require.Equal(t, "fresh", v)
}

func TestActiveRequests(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	a := NewActiveRequests()
	a.now = clock.Now

	require.True(t, a.Begin("eatery", "eatery-0-20"))
	require.False(t, a.Begin("eatery", "eatery-0-20"))
	require.True(t, a.Active("eatery"))

	a.End("eatery", "other-key")
	require.True(t, a.Active("eatery"))

	clock.Advance(31 * time.Second)
	require.Equal(t, 1, a.EvictOlderThan(30*time.Second))
	require.False(t, a.Active("eatery"))

	require.True(t, a.Begin("eatery", "eatery-20-20"))
	a.End("eatery", "eatery-20-20")
	require.False(t, a.Active("eatery"))
}

func TestReaper_SweepAndLifecycle(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	reg := NewRegistry()
	reg.now = clock.Now
	active := NewActiveRequests()
	active.now = clock.Now

	gate := make(chan struct{})
	defer close(gate)
	go reg.Do(context.Background(), "k", func(ctx context.Context) (any, error) {
		<-gate
		return nil, nil
	})
	require.Eventually(t, func() bool { return reg.Len() == 1 }, time.Second, time.Millisecond)
	active.Begin("mikvah", "k")

	reaper := NewReaper(reg, active, 0, 0, quietLogger())
	require.Zero(t, reaper.Sweep())

	clock.Advance(DefaultStaleAfter + time.Second)
	require.Equal(t, 2, reaper.Sweep())
	require.Zero(t, reg.Len())
	require.False(t, active.Active("mikvah"))

	require.False(t, reaper.Running())
	reaper.Start(context.Background())
	reaper.Start(context.Background())
	require.True(t, reaper.Running())
	reaper.Stop()
	require.False(t, reaper.Running())
	reaper.Stop()
}

func TestReaper_TickerEvicts(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	gate := make(chan struct{})
	defer close(gate)
	go reg.Do(context.Background(), "k", func(ctx context.Context) (any, error) {
		<-gate
		return nil, nil
	})
	require.Eventually(t, func() bool { return reg.Len() == 1 }, time.Second, time.Millisecond)

	reaper := NewReaper(reg, nil, 5*time.Millisecond, time.Millisecond, quietLogger())
	reaper.Start(context.Background())
	defer reaper.Stop()

	require.Eventually(t, func() bool { return reg.Len() == 0 }, time.Second, 5*time.Millisecond)
}
