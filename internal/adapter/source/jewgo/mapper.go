package jewgo

import (
	"strconv"
	"strings"
	"time"

	"github.com/jewgo/jewgo/internal/domain"
)

// MapListings converts API listings to raw domain listings. Validation and
// coercion happen later in the catalog transform step.
func MapListings(rows []listingDTO) []domain.Listing {
	out := make([]domain.Listing, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Listing{
			ID:           strings.TrimSpace(string(r.ID)),
			Title:        r.Title,
			Name:         r.Name,
			Description:  r.Description,
			CategoryName: r.CategoryName,
			EntityType:   r.EntityType,
			ImageURL:     r.ImageURL,
			Images:       []string(r.Images),
			Rating:       string(r.Rating),
			ReviewCount:  string(r.ReviewCount),
			Latitude:     string(r.Latitude),
			Longitude:    string(r.Longitude),
			Address:      r.Address,
			City:         r.City,
			State:        r.State,
			ZipCode:      string(r.ZipCode),
			PriceRange:   string(r.PriceRange),
			KosherLevel:  r.KosherLevel,
			Amenities:    map[string]bool(r.Amenities),
		})
	}
	return out
}

// MapSpecials converts API specials. GeoJSON points are [lng, lat].
func MapSpecials(rows []specialDTO) []domain.ActiveSpecial {
	out := make([]domain.ActiveSpecial, 0, len(rows))
	for _, r := range rows {
		s := domain.ActiveSpecial{
			ID:             string(r.ID),
			BusinessID:     string(r.BusinessID),
			Title:          r.Title,
			DiscountLabel:  r.DiscountLabel,
			Priority:       int(r.Priority),
			ValidUntil:     parseTime(r.ValidUntil),
			ClaimsTotal:    int(r.ClaimsTotal),
			MaxClaimsTotal: int(r.MaxClaimsTotal),
			BusinessName:   r.BusinessName,
			City:           r.City,
			State:          r.State,
		}
		if r.Location != nil && len(r.Location.Coordinates) == 2 {
			s.Location = &domain.Coordinate{
				Latitude:  r.Location.Coordinates[1],
				Longitude: r.Location.Coordinates[0],
			}
		}
		out = append(out, s)
	}
	return out
}

// MapEvents converts API events
func MapEvents(rows []eventDTO) []domain.Event {
	out := make([]domain.Event, 0, len(rows))
	for _, r := range rows {
		e := domain.Event{
			ID:             string(r.ID),
			Title:          r.Title,
			Description:    r.Description,
			EventDate:      parseTime(r.EventDate),
			EventEndDate:   parseTime(r.EventEndDate),
			Timezone:       r.Timezone,
			ZipCode:        string(r.ZipCode),
			Address:        r.Address,
			City:           r.City,
			State:          r.State,
			VenueName:      r.VenueName,
			FlyerURL:       r.FlyerURL,
			CategoryName:   r.CategoryName,
			EventTypeName:  r.EventTypeName,
			IsRSVPRequired: r.IsRSVPRequired,
			IsFree:         !r.IsPaid,
		}
		lat, latErr := strconv.ParseFloat(string(r.Latitude), 64)
		lng, lngErr := strconv.ParseFloat(string(r.Longitude), 64)
		if latErr == nil && lngErr == nil {
			c := domain.Coordinate{Latitude: lat, Longitude: lng}
			if c.Valid() {
				e.Coordinate = &c
			}
		}
		out = append(out, e)
	}
	return out
}

// MapJobSeekers converts API job seeker profiles
func MapJobSeekers(rows []jobSeekerDTO) []domain.JobSeeker {
	out := make([]domain.JobSeeker, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.JobSeeker{
			ID:                         string(r.ID),
			FullName:                   r.FullName,
			Title:                      r.Title,
			Summary:                    r.Summary,
			City:                       r.City,
			State:                      r.State,
			ZipCode:                    string(r.ZipCode),
			ExperienceYears:            int(r.ExperienceYears),
			Availability:               r.Availability,
			KosherEnvironmentPreferred: r.KosherEnvironmentPreferred,
		})
	}
	return out
}

// MapFavorites converts API favorites
func MapFavorites(rows []favoriteDTO) []domain.Favorite {
	out := make([]domain.Favorite, 0, len(rows))
	for _, r := range rows {
		rating, _ := strconv.ParseFloat(string(r.Rating), 64)
		out = append(out, domain.Favorite{
			ID:          string(r.ID),
			EntityID:    string(r.EntityID),
			EntityName:  r.EntityName,
			EntityType:  r.EntityType,
			Description: r.Description,
			Address:     r.Address,
			City:        r.City,
			State:       r.State,
			Rating:      rating,
			ReviewCount: int(r.ReviewCount),
			IsActive:    r.IsActive,
			ImageURL:    r.ImageURL,
			FavoritedAt: parseTime(r.FavoritedAt),
			Category:    r.Category,
			Phone:       r.Phone,
		})
	}
	return out
}

// MapFavoriteStatus converts a check/toggle response
func MapFavoriteStatus(r favoriteStatusDTO) domain.FavoriteStatus {
	return domain.FavoriteStatus{
		EntityID:    string(r.EntityID),
		IsFavorited: r.IsFavorited,
		FavoritedAt: parseTime(r.FavoritedAt),
	}
}

// parseTime accepts RFC 3339 timestamps and bare dates; anything else is zero.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
