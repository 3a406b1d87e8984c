package search

import (
	"sort"
	"strings"

	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/location"
)

// SortBy selects the ordering applied after filtering
type SortBy string

const (
	SortByDistance SortBy = "distance"
	SortByRating   SortBy = "rating"
	SortByName     SortBy = "name"
)

// SortOrder is asc or desc
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// "any" disables the kosher and price filters
const Any = "any"

// maxDistanceOff is the slider's top stop; at this value distance is not filtered
const maxDistanceOff = 100

// distanceSanityMiles skips the distance filter for implausible distances,
// which usually mean bad coordinates rather than a far away listing
const distanceSanityMiles = 5000

// Filters narrows and orders a grid
type Filters struct {
	MaxDistance      float64 // miles
	MinRating        float64
	KosherLevel      string
	PriceRange       string
	City             string
	State            string
	HasParking       bool
	HasWifi          bool
	HasAccessibility bool
	HasDelivery      bool
	OpenNow          bool
	OpenWeekends     bool
	SortBy           SortBy
	SortOrder        SortOrder
}

// DefaultFilters returns filters that let everything through, nearest first.
func DefaultFilters() Filters {
	return Filters{
		MaxDistance: maxDistanceOff,
		MinRating:   0,
		KosherLevel: Any,
		PriceRange:  Any,
		SortBy:      SortByDistance,
		SortOrder:   SortAsc,
	}
}

// ActiveCount returns how many filters differ from the defaults. A
// changed sort counts once.
func (f Filters) ActiveCount() int {
	count := 0
	if f.MaxDistance != maxDistanceOff {
		count++
	}
	if f.MinRating > 0 {
		count++
	}
	if f.KosherLevel != Any && f.KosherLevel != "" {
		count++
	}
	if f.PriceRange != Any && f.PriceRange != "" {
		count++
	}
	if f.SortBy != SortByDistance || f.SortOrder != SortAsc {
		count++
	}
	for _, on := range []bool{f.HasParking, f.HasWifi, f.HasAccessibility, f.HasDelivery, f.OpenNow, f.OpenWeekends} {
		if on {
			count++
		}
	}
	return count
}

// HasActive reports whether any filter is set.
func (f Filters) HasActive() bool {
	return f.ActiveCount() > 0
}

// Keep reports whether item passes the filters. origin is the user's
// position and may be nil.
func (f Filters) Keep(item domain.CategoryItem, origin *domain.Coordinate) bool {
	if origin != nil && item.Coordinate != nil && f.MaxDistance < maxDistanceOff {
		d := location.Distance(*origin, *item.Coordinate)
		if d <= distanceSanityMiles && d > f.MaxDistance {
			return false
		}
	}

	if f.MinRating > 0 && (!item.HasRating() || item.RatingValue() < f.MinRating) {
		return false
	}
	if f.PriceRange != Any && f.PriceRange != "" && item.Price != f.PriceRange {
		return false
	}
	if f.KosherLevel != Any && f.KosherLevel != "" && string(item.KosherLevel) != f.KosherLevel {
		return false
	}

	if f.City != "" && item.City != "" && !strings.EqualFold(item.City, f.City) {
		return false
	}
	if f.State != "" && item.State != "" && !strings.EqualFold(item.State, f.State) {
		return false
	}

	switch {
	case f.HasParking && !item.HasParking,
		f.HasWifi && !item.HasWifi,
		f.HasAccessibility && !item.HasAccessibility,
		f.HasDelivery && !item.HasDelivery,
		f.OpenNow && !item.IsOpen,
		f.OpenWeekends && !item.OpenWeekends:
		return false
	}
	return true
}

// Apply filters items and sorts the survivors. The input is not modified.
// Distance sorting puts items without coordinates last and is skipped
// entirely when origin is nil.
func (f Filters) Apply(items []domain.CategoryItem, origin *domain.Coordinate) []domain.CategoryItem {
	out := make([]domain.CategoryItem, 0, len(items))
	for _, item := range items {
		if f.Keep(item, origin) {
			out = append(out, item)
		}
	}

	desc := f.SortOrder == SortDesc

	switch f.SortBy {
	case SortByRating:
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return out[i].RatingValue() > out[j].RatingValue()
			}
			return out[i].RatingValue() < out[j].RatingValue()
		})
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := strings.ToLower(out[i].Title), strings.ToLower(out[j].Title)
			if desc {
				return a > b
			}
			return a < b
		})
	default:
		if origin == nil {
			break
		}
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Coordinate, out[j].Coordinate
			switch {
			case a != nil && b != nil:
				da, db := location.Distance(*origin, *a), location.Distance(*origin, *b)
				if desc {
					return da > db
				}
				return da < db
			case a != nil:
				return true
			default:
				return false
			}
		})
	}

	return out
}
