package location

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/metrics"
)

// Platform selects how permission prompts behave
type Platform string

const (
	// PlatformIOS: the permission prompt is triggered by requesting a fix
	PlatformIOS Platform = "ios"
	// PlatformAndroid: permission is requested on its own
	PlatformAndroid Platform = "android"
)

// Fix and watch settings handed to the position provider
var (
	FixOptions = domain.PositionOptions{
		HighAccuracy: true,
		Timeout:      15 * time.Second,
		MaximumAge:   10 * time.Second,
	}
	WatchOptions = domain.PositionOptions{
		HighAccuracy:   false,
		DistanceFilter: 100,
		Interval:       30 * time.Second,
	}
)

// User-facing error messages
const (
	msgPermissionDenied  = "Location permission denied"
	msgUnavailable       = "Location unavailable"
	msgTimeout           = "Location request timed out"
	msgFailed            = "Failed to get location"
	msgWatchFailed       = "Failed to watch location"
	msgPermissionRequest = "Failed to request location permission"
)

// State is the shared location state. Every update produces a new value;
// Location points at an immutable fix.
type State struct {
	Location            *domain.Location
	Loading             bool
	Error               string
	PermissionGranted   bool
	PermissionRequested bool
	PermissionDenied    bool
}

// Options configures a Store
type Options struct {
	Platform Platform
	Provider domain.PositionProvider
	Geocoder domain.Geocoder // optional
	// Debounce overrides DefaultDebounce (tests)
	Debounce time.Duration
	// Threshold overrides SignificanceMeters
	Threshold float64
}

// Store owns the device location for the whole process. Consumers read
// State or Subscribe; notifications are debounced and skipped when nothing
// they render has changed.
type Store struct {
	provider  domain.PositionProvider
	geocoder  domain.Geocoder
	platform  Platform
	threshold float64
	logger    *slog.Logger

	mu     sync.Mutex
	state  State
	subs   map[int]chan State
	nextID int
	closed bool

	// granted is closed the first time permission is granted
	granted     chan struct{}
	grantedOnce sync.Once

	debouncer *Debouncer[State]
}

// NewStore creates a store in the unrequested state.
func NewStore(opts Options, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Platform == "" {
		opts.Platform = PlatformAndroid
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Threshold <= 0 {
		opts.Threshold = SignificanceMeters
	}

	s := &Store{
		provider:  opts.Provider,
		geocoder:  opts.Geocoder,
		platform:  opts.Platform,
		threshold: opts.Threshold,
		logger:    logger,
		subs:      make(map[int]chan State),
		granted:   make(chan struct{}),
	}
	s.debouncer = NewDebouncer(opts.Debounce, Changed, s.broadcast)
	s.debouncer.Prime(s.state)
	return s
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel receiving the latest settled state. The
// returned func unsubscribes.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			close(sub)
			delete(s.subs, id)
		}
	}
}

func (s *Store) broadcast(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}

// update applies fn to a copy of the state and publishes the result.
func (s *Store) update(fn func(st *State)) State {
	s.mu.Lock()
	next := s.state
	fn(&next)
	s.state = next
	closed := s.closed
	s.mu.Unlock()

	if next.PermissionGranted {
		s.grantedOnce.Do(func() { close(s.granted) })
	}

	if !closed {
		s.debouncer.Push(next)
	}
	return next
}

func setLocation(st *State, loc *domain.Location) {
	st.Location = loc
	st.Error = ""
}

func setError(st *State, msg string) {
	st.Error = msg
	st.Loading = false
}

func setPermission(st *State, granted, requested, denied bool) {
	st.PermissionGranted = granted
	st.PermissionRequested = requested
	st.PermissionDenied = denied
}

// errorMessage maps a provider error to the message shown to the user.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return msgPermissionDenied
	case errors.Is(err, domain.ErrPositionUnavailable):
		return msgUnavailable
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	default:
		return msgFailed
	}
}

// enrich adds zip/city/state from the geocoder. Failures are logged and
// otherwise ignored.
func (s *Store) enrich(ctx context.Context, loc *domain.Location) {
	if s.geocoder == nil {
		return
	}
	addr, err := s.geocoder.ReverseGeocode(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		s.logger.Debug("failed to reverse geocode location", "error", err)
		return
	}
	if addr == nil {
		return
	}
	loc.ZipCode = addr.ZipCode
	loc.City = addr.City
	loc.State = addr.State
}

func (s *Store) fix(ctx context.Context) (domain.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, FixOptions.Timeout)
	defer cancel()
	return s.provider.CurrentPosition(ctx, FixOptions)
}

// RequestPermission asks for location access and reports whether it was
// granted. On iOS the prompt is driven by requesting a fix, so a granted
// request also stores that fix.
func (s *Store) RequestPermission(ctx context.Context) bool {
	if s.provider == nil {
		s.update(func(st *State) { setError(st, msgPermissionRequest) })
		return false
	}

	if s.platform == PlatformIOS {
		s.update(func(st *State) { st.Loading = true })

		loc, err := s.fix(ctx)
		if err != nil {
			s.logger.Error("location permission error", "error", err)
			metrics.LocationUpdatesTotal.WithLabelValues("error").Inc()
			denied := errors.Is(err, domain.ErrPermissionDenied)
			s.update(func(st *State) {
				setPermission(st, false, true, denied)
				setError(st, errorMessage(err))
			})
			return false
		}

		s.enrich(ctx, &loc)
		metrics.LocationUpdatesTotal.WithLabelValues("accepted").Inc()
		s.update(func(st *State) {
			setLocation(st, &loc)
			setPermission(st, true, true, false)
			st.Loading = false
		})
		s.logger.Debug("location permission granted", "platform", s.platform)
		return true
	}

	status, err := s.provider.RequestPermission(ctx)
	if err != nil {
		s.logger.Error("failed to request location permission", "error", err)
		s.update(func(st *State) { setError(st, msgPermissionRequest) })
		return false
	}

	granted := status == domain.PermissionGranted
	denied := status == domain.PermissionDenied
	s.update(func(st *State) { setPermission(st, granted, true, denied) })
	s.logger.Debug("location permission result", "granted", granted, "denied", denied)
	return granted
}

// CurrentLocation takes a single high accuracy fix. It asks for permission
// first when it has never been asked. A fix within the significance
// threshold of the stored one is dropped and the stored fix returned.
// Returns nil when no location could be obtained.
func (s *Store) CurrentLocation(ctx context.Context) *domain.Location {
	st := s.State()
	if !st.PermissionGranted && !st.PermissionRequested {
		if !s.RequestPermission(ctx) {
			return nil
		}
	}
	if s.provider == nil {
		return nil
	}

	s.update(func(st *State) {
		st.Loading = true
		st.Error = ""
	})

	loc, err := s.fix(ctx)
	if err != nil {
		s.logger.Error("failed to get location", "error", err)
		metrics.LocationUpdatesTotal.WithLabelValues("error").Inc()
		denied := errors.Is(err, domain.ErrPermissionDenied)
		s.update(func(st *State) {
			setPermission(st, false, true, denied)
			setError(st, errorMessage(err))
		})
		return nil
	}

	s.enrich(ctx, &loc)

	var result *domain.Location
	s.update(func(st *State) {
		st.Loading = false
		if !Significant(st.Location, loc, s.threshold) {
			result = st.Location
			return
		}
		setLocation(st, &loc)
		result = &loc
	})

	if result != &loc {
		metrics.LocationUpdatesTotal.WithLabelValues("ignored").Inc()
		s.logger.Debug("location unchanged", "lat", loc.Latitude, "lng", loc.Longitude)
	} else {
		metrics.LocationUpdatesTotal.WithLabelValues("accepted").Inc()
		s.logger.Debug("location updated", "lat", loc.Latitude, "lng", loc.Longitude)
	}
	return result
}

// Watch follows the device position with low accuracy until ctx is done
// or the returned stop func is called. Fixes pass the same significance
// filter as CurrentLocation. The watch starts once permission has been
// granted, so it may be called before anything asked for it.
func (s *Store) Watch(ctx context.Context) (stop func()) {
	if s.provider == nil {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
			return
		case <-s.granted:
		}
		s.follow(ctx)
	}()

	return func() {
		cancel()
		<-done
	}
}

func (s *Store) follow(ctx context.Context) {
	updates, err := s.provider.WatchPosition(ctx, WatchOptions)
	if err != nil {
		s.logger.Error("failed to watch location", "error", err)
		s.update(func(st *State) { setError(st, msgWatchFailed) })
		return
	}
	s.logger.Debug("watching location")

	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			s.handleWatchUpdate(ctx, upd)
		}
	}
}

func (s *Store) handleWatchUpdate(ctx context.Context, upd domain.PositionUpdate) {
	if upd.Err != nil {
		s.logger.Error("error watching location", "error", upd.Err)
		metrics.LocationUpdatesTotal.WithLabelValues("error").Inc()
		s.update(func(st *State) { setError(st, msgWatchFailed) })
		return
	}

	loc := upd.Location
	s.enrich(ctx, &loc)

	var significant bool
	s.update(func(st *State) {
		if significant = Significant(st.Location, loc, s.threshold); significant {
			setLocation(st, &loc)
		}
	})
	if !significant {
		metrics.LocationUpdatesTotal.WithLabelValues("ignored").Inc()
		return
	}
	metrics.LocationUpdatesTotal.WithLabelValues("accepted").Inc()
}

// Reset returns the store to the unrequested state.
func (s *Store) Reset() {
	s.update(func(st *State) { *st = State{} })
}

// Close stops notifications and closes every subscription.
func (s *Store) Close() {
	s.debouncer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}
