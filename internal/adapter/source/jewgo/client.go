package jewgo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/metrics"
)

const (
	defaultTimeout  = 30 * time.Second
	nonJSONPreview  = 100
	requestIDHeader = "X-Request-ID"
)

// APIError is a failed API call carrying the message the server (or the
// client) produced for the user. It unwraps to a domain sentinel when the
// status maps to one.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.kind }

// UserMessage is the text to show for this failure
func (e *APIError) UserMessage() string { return e.Message }

// Client implements the listing, specials, events, job seeker and
// favorites repositories against the Jewgo REST API. No request is retried.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Jewgo API client. token may be empty for
// anonymous browsing.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Authenticated reports whether the client carries a session token
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// reply is a decoded response: the payload plus a top-level redirect hint
type reply struct {
	Data       json.RawMessage
	RedirectTo string
}

// doRequest performs an HTTP request and returns the response payload:
// the "data" member of the envelope when there is one, else the body.
func (c *Client) doRequest(ctx context.Context, endpoint, method, path string, query url.Values, body any) (json.RawMessage, error) {
	r, err := c.send(ctx, endpoint, method, path, query, body)
	return r.Data, err
}

// send is doRequest keeping the envelope's redirectTo. A redirect on a
// failed envelope is not an error.
func (c *Client) send(ctx context.Context, endpoint, method, path string, query url.Values, body any) (reply, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return reply{}, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return reply{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	c.logger.Debug("jewgo request", "method", method, "url", reqURL, "request_id", requestID)

	start := time.Now()
	metrics.APIRequestsTotal.WithLabelValues(endpoint).Inc()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDurationMs.WithLabelValues(endpoint).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return reply{}, ctxErr
		}
		c.logger.Error("jewgo request failed", "error", err, "request_id", requestID)
		return reply{}, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return reply{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		msg := "Rate limit exceeded. Please try again later."
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			msg = fmt.Sprintf("Rate limit exceeded. Please try again in %s seconds.", retryAfter)
		}
		c.logger.Warn("jewgo rate limited", "path", path, "retry_after", resp.Header.Get("Retry-After"))
		return reply{}, &APIError{Status: resp.StatusCode, Message: msg, kind: domain.ErrRateLimited}
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		preview := string(respBody)
		if len(preview) > nonJSONPreview {
			preview = preview[:nonJSONPreview]
		}
		c.logger.Warn("non-json response received", "status", resp.StatusCode, "path", path)
		return reply{}, &APIError{
			Status:  resp.StatusCode,
			Message: "Server returned non-JSON response: " + preview,
			kind:    statusKind(resp.StatusCode),
		}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		// Bare arrays are a valid payload
		if resp.StatusCode < 300 && json.Valid(respBody) {
			return reply{Data: respBody}, nil
		}
		return reply{}, fmt.Errorf("failed to parse response: %w", err)
	}

	failed := resp.StatusCode < 200 || resp.StatusCode >= 300 || (env.Success != nil && !*env.Success)
	if failed && env.RedirectTo != "" {
		c.logger.Debug("jewgo redirect", "status", resp.StatusCode, "path", path, "redirect_to", env.RedirectTo)
		return reply{RedirectTo: env.RedirectTo}, nil
	}

	if failed {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = "HTTP " + strconv.Itoa(resp.StatusCode)
		}
		c.logger.Error("jewgo request error", "status", resp.StatusCode, "path", path, "error", msg)
		return reply{}, &APIError{Status: resp.StatusCode, Message: msg, kind: statusKind(resp.StatusCode)}
	}

	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		return reply{Data: env.Data, RedirectTo: env.RedirectTo}, nil
	}
	return reply{Data: respBody, RedirectTo: env.RedirectTo}, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func statusKind(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthFailed
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return nil
	}
}

// GetListingsByCategory returns one page of listings for an entity type
func (c *Client) GetListingsByCategory(ctx context.Context, entityType string, limit, offset int) (domain.ListingsPage, error) {
	query := url.Values{}
	query.Set("entityType", entityType)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	r, err := c.send(ctx, "entities", http.MethodGet, "/entities", query, nil)
	if err != nil {
		return domain.ListingsPage{}, err
	}
	data := r.Data
	if len(data) == 0 {
		return domain.ListingsPage{Listings: []domain.Listing{}, RedirectTo: r.RedirectTo}, nil
	}

	var bare []listingDTO
	if json.Unmarshal(data, &bare) == nil {
		return domain.ListingsPage{Listings: MapListings(bare)}, nil
	}

	var payload entitiesPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn("malformed entities payload", "error", err, "entity_type", entityType)
		return domain.ListingsPage{}, nil
	}
	rows := payload.Entities
	if rows == nil {
		rows = payload.Listings
	}
	redirect := payload.RedirectTo
	if redirect == "" {
		redirect = r.RedirectTo
	}
	return domain.ListingsPage{
		Listings:   MapListings(rows),
		RedirectTo: redirect,
	}, nil
}

// GetActiveSpecials returns one page of currently running specials
func (c *Client) GetActiveSpecials(ctx context.Context, page, limit int) ([]domain.ActiveSpecial, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	data, err := c.doRequest(ctx, "specials", http.MethodGet, "/specials/active", query, nil)
	if err != nil {
		return nil, err
	}

	var payload specialsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn("malformed specials payload", "error", err)
		return []domain.ActiveSpecial{}, nil
	}
	return MapSpecials(payload.Specials), nil
}

// GetEvents returns one page of events matching filters
func (c *Client) GetEvents(ctx context.Context, filters domain.EventFilters) (domain.EventsPage, error) {
	data, err := c.doRequest(ctx, "events", http.MethodGet, "/api/v5/events", eventQuery(filters), nil)
	if err != nil {
		return domain.EventsPage{}, err
	}

	var payload eventsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn("malformed events payload", "error", err)
		return domain.EventsPage{Events: []domain.Event{}}, nil
	}
	return domain.EventsPage{
		Events: MapEvents(payload.Events),
		Total:  int(payload.Pagination.Total),
		Page:   int(payload.Pagination.Page),
	}, nil
}

func eventQuery(f domain.EventFilters) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("category", f.Category)
	set("eventType", f.EventType)
	set("dateFrom", f.DateFrom)
	set("dateTo", f.DateTo)
	set("search", f.Search)
	if f.IsFree {
		q.Set("isFree", "true")
	}
	if f.IsRSVPRequired {
		q.Set("isRsvpRequired", "true")
	}
	if f.Latitude != 0 || f.Longitude != 0 {
		q.Set("lat", strconv.FormatFloat(f.Latitude, 'f', -1, 64))
		q.Set("lng", strconv.FormatFloat(f.Longitude, 'f', -1, 64))
	}
	if f.Radius > 0 {
		q.Set("radius", strconv.FormatFloat(f.Radius, 'f', -1, 64))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	set("sortBy", f.SortBy)
	set("sortOrder", f.SortOrder)
	return q
}

// GetJobSeekers returns one page of job seeker profiles
func (c *Client) GetJobSeekers(ctx context.Context, params domain.JobSeekerParams) ([]domain.JobSeeker, error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.SortBy != "" {
		query.Set("sort_by", params.SortBy)
	}
	if params.SortOrder != "" {
		query.Set("sort_order", params.SortOrder)
	}

	data, err := c.doRequest(ctx, "job_seekers", http.MethodGet, "/job-seekers", query, nil)
	if err != nil {
		return nil, err
	}

	var payload jobSeekersPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn("malformed job seekers payload", "error", err)
		return []domain.JobSeeker{}, nil
	}
	return MapJobSeekers(payload.JobSeekers), nil
}

// GetUserFavorites returns one page of the signed-in user's favorites
func (c *Client) GetUserFavorites(ctx context.Context, limit, offset int) (domain.FavoritesPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	data, err := c.doRequest(ctx, "favorites", http.MethodGet, "/favorites", query, nil)
	if err != nil {
		return domain.FavoritesPage{}, err
	}

	var payload favoritesPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn("malformed favorites payload", "error", err)
		return domain.FavoritesPage{Favorites: []domain.Favorite{}, Limit: limit, Offset: offset}, nil
	}
	return domain.FavoritesPage{
		Favorites: MapFavorites(payload.Favorites),
		Total:     int(payload.Total),
		Limit:     int(payload.Limit),
		Offset:    int(payload.Offset),
	}, nil
}

// AddToFavorites favorites an entity. The item is only needed by the
// guest store; the server looks the entity up itself.
func (c *Client) AddToFavorites(ctx context.Context, entityID string, _ *domain.CategoryItem) error {
	_, err := c.doRequest(ctx, "favorites", http.MethodPost, "/favorites", nil, favoriteRequest{EntityID: entityID})
	return err
}

// RemoveFromFavorites unfavorites an entity
func (c *Client) RemoveFromFavorites(ctx context.Context, entityID string) error {
	_, err := c.doRequest(ctx, "favorites", http.MethodDelete, "/favorites/"+url.PathEscape(entityID), nil, nil)
	return err
}

// ToggleFavorite flips an entity's favorited state on the server
func (c *Client) ToggleFavorite(ctx context.Context, entityID string, _ *domain.CategoryItem) (domain.FavoriteStatus, error) {
	data, err := c.doRequest(ctx, "favorites", http.MethodPost, "/favorites/toggle", nil, favoriteRequest{EntityID: entityID})
	if err != nil {
		return domain.FavoriteStatus{}, err
	}
	return parseStatus(data, entityID)
}

// CheckFavorite returns an entity's favorited state
func (c *Client) CheckFavorite(ctx context.Context, entityID string) (domain.FavoriteStatus, error) {
	data, err := c.doRequest(ctx, "favorites", http.MethodGet, "/favorites/check/"+url.PathEscape(entityID), nil, nil)
	if err != nil {
		return domain.FavoriteStatus{}, err
	}
	return parseStatus(data, entityID)
}

func parseStatus(data json.RawMessage, entityID string) (domain.FavoriteStatus, error) {
	var dto favoriteStatusDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.FavoriteStatus{}, fmt.Errorf("failed to parse favorite status: %w", err)
	}
	status := MapFavoriteStatus(dto)
	if status.EntityID == "" {
		status.EntityID = entityID
	}
	return status, nil
}

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	data, err := c.doRequest(ctx, "auth", http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var payload loginPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse auth response: %w", err)
	}
	if payload.Tokens.AccessToken == "" {
		return nil, errors.New("login failed")
	}
	return &domain.AuthResult{
		Token:        payload.Tokens.AccessToken,
		RefreshToken: payload.Tokens.RefreshToken,
		UserID:       string(payload.User.ID),
		Email:        payload.User.Email,
	}, nil
}
