package location

import (
	"sync"
	"time"

	"github.com/jewgo/jewgo/internal/domain"
)

const (
	// SignificanceMeters is how far a fix must move before it replaces the stored one
	SignificanceMeters = 50
	// DefaultDebounce is how long state must settle before listeners hear about it
	DefaultDebounce = 100 * time.Millisecond
)

// Significant reports whether next should replace prev: there is no
// previous fix, or next is more than threshold meters away from it.
func Significant(prev *domain.Location, next domain.Location, thresholdMeters float64) bool {
	if prev == nil {
		return true
	}
	return DistanceMeters(prev.Coordinate(), next.Coordinate()) > thresholdMeters
}

// Changed reports whether b differs from a in anything listeners render:
// coordinate, zip code, loading, error or permission flags. Timestamp and
// accuracy changes alone do not count.
func Changed(a, b State) bool {
	if a.Loading != b.Loading || a.Error != b.Error ||
		a.PermissionGranted != b.PermissionGranted ||
		a.PermissionRequested != b.PermissionRequested ||
		a.PermissionDenied != b.PermissionDenied {
		return true
	}
	switch {
	case a.Location == nil && b.Location == nil:
		return false
	case a.Location == nil || b.Location == nil:
		return true
	}
	return a.Location.Latitude != b.Location.Latitude ||
		a.Location.Longitude != b.Location.Longitude ||
		a.Location.ZipCode != b.Location.ZipCode
}

// Debouncer delivers the last value pushed once pushes have paused for
// the delay, and only if it differs from the last value delivered.
type Debouncer[T any] struct {
	delay   time.Duration
	changed func(prev, next T) bool
	emit    func(T)

	mu         sync.Mutex
	timer      *time.Timer
	pending    T
	hasPending bool
	last       T
	hasLast    bool
	stopped    bool
}

// NewDebouncer creates a debouncer. changed may be nil, in which case
// every settled value is delivered.
func NewDebouncer[T any](delay time.Duration, changed func(prev, next T) bool, emit func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, changed: changed, emit: emit}
}

// Prime sets the baseline the first delivery is compared against.
func (d *Debouncer[T]) Prime(v T) {
	d.mu.Lock()
	d.last = v
	d.hasLast = true
	d.mu.Unlock()
}

// Push records v and restarts the delay.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = v
	d.hasPending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
		return
	}
	d.timer.Reset(d.delay)
}

func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if d.stopped || !d.hasPending {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.hasPending = false
	if d.hasLast && d.changed != nil && !d.changed(d.last, v) {
		d.mu.Unlock()
		return
	}
	d.last = v
	d.hasLast = true
	d.mu.Unlock()

	d.emit(v)
}

// Stop drops any pending value and disables further deliveries.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.hasPending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
