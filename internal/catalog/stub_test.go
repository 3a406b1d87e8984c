package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jewgo/jewgo/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type listingCall struct {
	category string
	limit    int
	offset   int
}

// stubListings serves pages of generated listings. sizes maps an offset
// to how many listings that page holds; missing offsets return nothing.
type stubListings struct {
	mu       sync.Mutex
	calls    []listingCall
	sizes    map[int]int
	idStart  map[int]int // optional first id per offset, for overlap tests
	titles   []string    // optional titles, cycled
	err      error
	redirect string
	gate     chan struct{}
}

func (s *stubListings) GetListingsByCategory(ctx context.Context, category string, limit, offset int) (domain.ListingsPage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, listingCall{category: category, limit: limit, offset: offset})
	gate, err, redirect := s.gate, s.err, s.redirect
	n := s.sizes[offset]
	start, ok := s.idStart[offset]
	if !ok {
		start = offset
	}
	titles := s.titles
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.ListingsPage{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.ListingsPage{}, err
	}
	if redirect != "" {
		return domain.ListingsPage{RedirectTo: redirect}, nil
	}

	listings := make([]domain.Listing, 0, n)
	for i := 0; i < n; i++ {
		id := start + i
		title := fmt.Sprintf("%s %d", category, id)
		if len(titles) > 0 {
			title = titles[id%len(titles)]
		}
		listings = append(listings, domain.Listing{
			ID:        strconv.Itoa(id),
			Title:     title,
			Rating:    "4.5",
			Latitude:  "40.7128",
			Longitude: "-74.0060",
		})
	}
	return domain.ListingsPage{Listings: listings}, nil
}

func (s *stubListings) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubListings) callsAt(offset int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.offset == offset {
			n++
		}
	}
	return n
}

type stubSpecials struct {
	mu    sync.Mutex
	calls int
	items []domain.ActiveSpecial
}

func (s *stubSpecials) GetActiveSpecials(ctx context.Context, page, limit int) ([]domain.ActiveSpecial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if page > 1 {
		return nil, nil
	}
	return s.items, nil
}

type stubEvents struct {
	mu      sync.Mutex
	calls   []domain.EventFilters
	perPage int
	err     error
	gate    chan struct{}
}

func (s *stubEvents) GetEvents(ctx context.Context, filters domain.EventFilters) (domain.EventsPage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, filters)
	gate, err, n := s.gate, s.err, s.perPage
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.EventsPage{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.EventsPage{}, err
	}

	events := make([]domain.Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, domain.Event{
			ID:    fmt.Sprintf("%s-%d-%d", filters.Search, filters.Page, i),
			Title: "Event " + filters.Search,
		})
	}
	return domain.EventsPage{Events: events, Page: filters.Page}, nil
}

func (s *stubEvents) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubJobSeekers struct {
	params  domain.JobSeekerParams
	seekers []domain.JobSeeker
	err     error
}

func (s *stubJobSeekers) GetJobSeekers(ctx context.Context, params domain.JobSeekerParams) ([]domain.JobSeeker, error) {
	s.params = params
	return s.seekers, s.err
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
