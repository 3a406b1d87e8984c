package location

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jewgo/jewgo/internal/domain"
)

// StaticProvider is a PositionProvider backed by a configured coordinate.
// Desktop builds have no location hardware; Move lets callers (and tests)
// drive watchers.
type StaticProvider struct {
	mu       sync.Mutex
	loc      *domain.Location
	status   domain.PermissionStatus
	err      error
	watchers map[int]chan domain.PositionUpdate
	nextID   int
	now      func() time.Time
}

// NewStaticProvider returns a provider that reports loc. A nil loc behaves
// like a device that cannot get a fix.
func NewStaticProvider(loc *domain.Location) *StaticProvider {
	p := &StaticProvider{
		watchers: make(map[int]chan domain.PositionUpdate),
		now:      time.Now,
	}
	if loc != nil {
		l := *loc
		p.loc = &l
	}
	return p
}

// SetPermission sets the answer given to permission prompts.
// Denied or blocked also makes position requests fail.
func (p *StaticProvider) SetPermission(status domain.PermissionStatus) {
	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
}

// SetError makes the next position requests fail with err until cleared.
func (p *StaticProvider) SetError(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Move changes the reported position and notifies watchers.
func (p *StaticProvider) Move(lat, lng float64) {
	p.mu.Lock()
	loc := domain.Location{Latitude: lat, Longitude: lng, Timestamp: p.now()}
	p.loc = &loc
	upd := domain.PositionUpdate{Location: loc}
	for _, ch := range p.watchers {
		select {
		case ch <- upd:
		default:
		}
	}
	p.mu.Unlock()
}

func (p *StaticProvider) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.PermissionDenied, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, nil
}

func (p *StaticProvider) CurrentPosition(ctx context.Context, _ domain.PositionOptions) (domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return domain.Location{}, fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.status != domain.PermissionGranted:
		return domain.Location{}, domain.ErrPermissionDenied
	case p.err != nil:
		return domain.Location{}, p.err
	case p.loc == nil:
		return domain.Location{}, domain.ErrPositionUnavailable
	}
	loc := *p.loc
	if loc.Timestamp.IsZero() {
		loc.Timestamp = p.now()
	}
	return loc, nil
}

func (p *StaticProvider) WatchPosition(ctx context.Context, _ domain.PositionOptions) (<-chan domain.PositionUpdate, error) {
	p.mu.Lock()
	if p.status != domain.PermissionGranted {
		p.mu.Unlock()
		return nil, domain.ErrPermissionDenied
	}
	id := p.nextID
	p.nextID++
	ch := make(chan domain.PositionUpdate, 8)
	p.watchers[id] = ch
	p.mu.Unlock()

	context.AfterFunc(ctx, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.watchers, id)
		close(ch)
	})
	return ch, nil
}
