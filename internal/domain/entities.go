package domain

import (
	"fmt"
	"time"
)

// KosherLevel is the supervision level advertised by a listing
type KosherLevel string

const (
	KosherUnknown       KosherLevel = ""
	KosherGlatt         KosherLevel = "glatt"
	KosherChalavYisrael KosherLevel = "chalav-yisrael"
	KosherPasYisrael    KosherLevel = "pas-yisrael"
)

// Coordinate is a WGS84 point. Values are range-checked by the transform step.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether the coordinate lies inside the lat/lng ranges
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// CategoryItem is the normalized listing record rendered by every grid.
// It is built once by the transform step and never mutated afterwards.
type CategoryItem struct {
	ID          string // Unique within a category+query scope
	Title       string
	Description string
	ImageURL    string
	Category    string // Display category ("Mikvah", "Eatery", ...)
	EntityType  string // Backend entity type ("mikvah", "restaurant", ...)

	// Rating is 0-5; nil when the backend sent nothing usable
	Rating      *float64
	ReviewCount int

	// Coordinate is nil when lat/lng were missing or out of range
	Coordinate *Coordinate

	Address string
	City    string
	State   string
	ZipCode string
	Price   string // "$".."$$$$", or free text for jobs

	KosherLevel      KosherLevel
	IsOpen           bool
	OpenWeekends     bool
	HasParking       bool
	HasWifi          bool
	HasAccessibility bool
	HasDelivery      bool
}

// HasRating reports whether a usable rating is present
func (c CategoryItem) HasRating() bool {
	return c.Rating != nil
}

// RatingValue returns the rating or 0 when absent
func (c CategoryItem) RatingValue() float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}

// Location returns "City, ST" or whichever half is known
func (c CategoryItem) Location() string {
	switch {
	case c.City != "" && c.State != "":
		return fmt.Sprintf("%s, %s", c.City, c.State)
	case c.City != "":
		return c.City
	default:
		return c.State
	}
}

// Listing is a listing record as the API returned it. Numeric fields arrive
// as strings or numbers depending on the endpoint, so they stay textual
// until the transform step validates them.
type Listing struct {
	ID           string
	Title        string
	Name         string // v5 entities use name instead of title
	Description  string
	CategoryName string
	EntityType   string
	ImageURL     string
	Images       []string

	Rating      string
	ReviewCount string
	Latitude    string
	Longitude   string

	Address    string
	City       string
	State      string
	ZipCode    string
	PriceRange string

	KosherLevel string
	Amenities   map[string]bool
}

// ActiveSpecial is a currently running deal attached to a business
type ActiveSpecial struct {
	ID             string
	BusinessID     string
	Title          string
	DiscountLabel  string
	Priority       int
	ValidUntil     time.Time
	ClaimsTotal    int
	MaxClaimsTotal int // 0 = unlimited
	BusinessName   string
	City           string
	State          string
	Location       *Coordinate
}

// Event is a community event listing
type Event struct {
	ID             string
	Title          string
	Description    string
	EventDate      time.Time
	EventEndDate   time.Time
	Timezone       string
	ZipCode        string
	Address        string
	City           string
	State          string
	Coordinate     *Coordinate
	VenueName      string
	FlyerURL       string
	CategoryName   string
	EventTypeName  string
	IsRSVPRequired bool
	IsFree         bool
}

// EventFilters narrows an events query. Zero values are omitted from the request.
type EventFilters struct {
	Category       string
	EventType      string
	DateFrom       string
	DateTo         string
	Search         string
	IsFree         bool
	IsRSVPRequired bool
	Latitude       float64
	Longitude      float64
	Radius         float64
	Page           int
	Limit          int
	SortBy         string
	SortOrder      string
}

// EventsPage is one page of events
type EventsPage struct {
	Events []Event
	Total  int
	Page   int
}

// JobSeeker is a candidate profile from the jobs vertical
type JobSeeker struct {
	ID                         string
	FullName                   string
	Title                      string
	Summary                    string
	City                       string
	State                      string
	ZipCode                    string
	ExperienceYears            int
	Availability               string
	KosherEnvironmentPreferred bool
}

// JobSeekerParams controls job seeker paging
type JobSeekerParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Favorite is a saved entity in the user's favorites list
type Favorite struct {
	ID          string
	EntityID    string
	EntityName  string
	EntityType  string
	Description string
	Address     string
	City        string
	State       string
	Rating      float64
	ReviewCount int
	IsActive    bool
	ImageURL    string
	FavoritedAt time.Time
	Category    string
	Phone       string
}

// FavoritesPage is one page of the user's favorites
type FavoritesPage struct {
	Favorites []Favorite
	Total     int
	Limit     int
	Offset    int
}

// FavoriteStatus is the server's view of one entity's favorited state
type FavoriteStatus struct {
	EntityID    string
	IsFavorited bool
	FavoritedAt time.Time
}

// Location is a device fix, optionally enriched by reverse geocoding
type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // meters
	Timestamp time.Time
	ZipCode   string
	City      string
	State     string
}

// Coordinate returns the fix as a Coordinate
func (l Location) Coordinate() Coordinate {
	return Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Address is the result of reverse geocoding a coordinate
type Address struct {
	ZipCode string
	City    string
	State   string
}

// CachedPage is the accumulated paging state for one (category, query) pair
type CachedPage struct {
	Data        []CategoryItem
	CurrentPage int
	HasMore     bool
	LastQuery   string
}
