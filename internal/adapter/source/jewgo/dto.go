package jewgo

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// envelope is the {success, data, error, message, redirectTo} wrapper most endpoints use.
// Some endpoints answer with the payload directly.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	// RedirectTo sends the caller to another listing source
	RedirectTo string `json:"redirectTo"`
}

// flexString accepts a JSON string, number or bool and keeps it as text.
// The API is inconsistent about which one it sends for ids, ratings and
// coordinates.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// flexInt accepts a number or a numeric string; anything else is zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// imageList accepts ["url", ...] or [{"url": "..."}, ...].
type imageList []string

func (l *imageList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if json.Unmarshal(r, &s) == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			URL string `json:"url"`
		}
		if json.Unmarshal(r, &obj) == nil {
			out = append(out, obj.URL)
		}
	}
	*l = out
	return nil
}

// flagMap accepts {"wifi": true, "parking": "yes", ...}. Non-boolean
// values count as set when they are truthy.
type flagMap map[string]bool

func (m *flagMap) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		*m = nil
		return nil
	}
	out := make(flagMap, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case bool:
			out[k] = t
		case float64:
			out[k] = t != 0
		case string:
			s := strings.ToLower(strings.TrimSpace(t))
			out[k] = s == "true" || s == "yes" || s == "1"
		}
	}
	*m = out
	return nil
}

type listingDTO struct {
	ID           flexString `json:"id"`
	Title        string     `json:"title"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	CategoryName string     `json:"category_name"`
	EntityType   string     `json:"entity_type"`
	ImageURL     string     `json:"image_url"`
	Images       imageList  `json:"images"`
	Rating       flexString `json:"rating"`
	ReviewCount  flexString `json:"review_count"`
	Latitude     flexString `json:"latitude"`
	Longitude    flexString `json:"longitude"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	State        string     `json:"state"`
	ZipCode      flexString `json:"zip_code"`
	PriceRange   flexString `json:"price_range"`
	KosherLevel  string     `json:"kosher_level"`
	Amenities    flagMap    `json:"amenities"`
}

// entitiesPayload covers {entities: [...]}, {listings: [...]} and
// {redirectTo: "..."}. A bare array is handled by the caller.
type entitiesPayload struct {
	Entities   []listingDTO `json:"entities"`
	Listings   []listingDTO `json:"listings"`
	RedirectTo string       `json:"redirectTo"`
}

type pointDTO struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lng, lat]
}

type specialDTO struct {
	ID             flexString `json:"id"`
	BusinessID     flexString `json:"businessId"`
	Title          string     `json:"title"`
	DiscountLabel  string     `json:"discountLabel"`
	Priority       flexInt    `json:"priority"`
	ValidUntil     string     `json:"validUntil"`
	ClaimsTotal    flexInt    `json:"claimsTotal"`
	MaxClaimsTotal flexInt    `json:"maxClaimsTotal"`
	BusinessName   string     `json:"businessName"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Location       *pointDTO  `json:"location"`
}

type specialsPayload struct {
	Specials []specialDTO `json:"specials"`
}

type eventDTO struct {
	ID             flexString `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	EventDate      string     `json:"event_date"`
	EventEndDate   string     `json:"event_end_date"`
	Timezone       string     `json:"timezone"`
	ZipCode        flexString `json:"zip_code"`
	Address        string     `json:"address"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Latitude       flexString `json:"latitude"`
	Longitude      flexString `json:"longitude"`
	VenueName      string     `json:"venue_name"`
	FlyerURL       string     `json:"flyer_url"`
	CategoryName   string     `json:"category_name"`
	EventTypeName  string     `json:"event_type_name"`
	IsRSVPRequired bool       `json:"is_rsvp_required"`
	IsPaid         bool       `json:"is_paid"`
}

type eventsPayload struct {
	Events     []eventDTO `json:"events"`
	Pagination struct {
		Page  flexInt `json:"page"`
		Total flexInt `json:"total"`
	} `json:"pagination"`
}

type jobSeekerDTO struct {
	ID                         flexString `json:"id"`
	FullName                   string     `json:"full_name"`
	Title                      string     `json:"title"`
	Summary                    string     `json:"summary"`
	City                       string     `json:"city"`
	State                      string     `json:"state"`
	ZipCode                    flexString `json:"zip_code"`
	ExperienceYears            flexInt    `json:"experience_years"`
	Availability               string     `json:"availability"`
	KosherEnvironmentPreferred bool       `json:"kosher_environment_preferred"`
}

type jobSeekersPayload struct {
	JobSeekers []jobSeekerDTO `json:"job_seekers"`
}

type favoriteDTO struct {
	ID          flexString `json:"id"`
	EntityID    flexString `json:"entity_id"`
	EntityName  string     `json:"entity_name"`
	EntityType  string     `json:"entity_type"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Rating      flexString `json:"rating"`
	ReviewCount flexInt    `json:"review_count"`
	IsActive    bool       `json:"is_active"`
	ImageURL    string     `json:"image_url"`
	FavoritedAt string     `json:"favorited_at"`
	Category    string     `json:"category"`
	Phone       string     `json:"phone"`
}

type favoritesPayload struct {
	Favorites []favoriteDTO `json:"favorites"`
	Total     flexInt       `json:"total"`
	Limit     flexInt       `json:"limit"`
	Offset    flexInt       `json:"offset"`
}

type favoriteStatusDTO struct {
	EntityID    flexString `json:"entity_id"`
	IsFavorited bool       `json:"is_favorited"`
	FavoritedAt string     `json:"favorited_at"`
}

type favoriteRequest struct {
	EntityID string `json:"entity_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	User struct {
		ID    flexString `json:"id"`
		Email string     `json:"email"`
	} `json:"user"`
	Tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    int    `json:"expiresIn"`
	} `json:"tokens"`
}
