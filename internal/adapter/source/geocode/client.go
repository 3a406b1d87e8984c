package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/metrics"
)

const (
	DefaultBaseURL  = "https://maps.googleapis.com/maps/api/geocode/json"
	DefaultCacheTTL = 5 * time.Minute
	defaultCapacity = 256
	defaultTimeout  = 10 * time.Second

	placeholderKey = "YOUR_GOOGLE_PLACES_API_KEY_HERE"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("geocoding api key not configured")

type response struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// Client resolves coordinates to zip/city/state through the Google
// geocoding API. Only results carrying a zip code are cached.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *LRU
	logger     *slog.Logger
}

// NewClient creates a geocoding client. baseURL "" means DefaultBaseURL.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      NewLRU(defaultCapacity, DefaultCacheTTL),
		logger:     logger,
	}
}

// ReverseGeocode returns the address for a coordinate, or nil when the
// response has no zip code.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*domain.Address, error) {
	key := cacheKey(lat, lng)
	if addr, ok := c.cache.Get(key); ok {
		return &addr, nil
	}

	if c.apiKey == "" || c.apiKey == placeholderKey {
		return nil, ErrNotConfigured
	}

	query := url.Values{}
	query.Set("latlng", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	query.Set("key", c.apiKey)
	reqURL := c.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	metrics.APIRequestsTotal.WithLabelValues("geocode").Inc()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDurationMs.WithLabelValues("geocode").Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		c.logger.Error("geocode request failed", "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var data response
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if data.Status != "OK" || len(data.Results) == 0 {
		c.logger.Debug("no geocoding results", "status", data.Status)
		return nil, nil
	}

	var addr domain.Address
	for _, comp := range data.Results[0].AddressComponents {
		switch {
		case slices.Contains(comp.Types, "postal_code"):
			addr.ZipCode = comp.LongName
		case slices.Contains(comp.Types, "locality"):
			addr.City = comp.LongName
		case slices.Contains(comp.Types, "administrative_area_level_1"):
			addr.State = comp.ShortName
		}
	}
	if strings.TrimSpace(addr.ZipCode) == "" {
		c.logger.Debug("no zip code in geocoding response")
		return nil, nil
	}

	c.cache.Set(key, addr)
	c.logger.Debug("reverse geocoded", "zip", addr.ZipCode, "city", addr.City, "state", addr.State)
	return &addr, nil
}
