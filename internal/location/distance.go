package location

import (
	"fmt"
	"math"

	"github.com/jewgo/jewgo/internal/domain"
)

const (
	earthRadiusMiles = 3959
	metersPerMile    = 1609.34
	feetPerMile      = 5280
)

// Distance returns the great-circle distance between a and b in miles.
func Distance(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLng := toRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMiles * c
}

// DistanceMeters returns the great-circle distance between a and b in meters.
func DistanceMeters(a, b domain.Coordinate) float64 {
	return Distance(a, b) * metersPerMile
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// FormatDistance renders a distance in miles for display: feet under a
// tenth of a mile, one decimal under ten miles, whole miles beyond.
func FormatDistance(miles float64) string {
	switch {
	case miles < 0 || math.IsNaN(miles) || math.IsInf(miles, 0):
		return ""
	case miles < 0.1:
		return fmt.Sprintf("%d ft", int(math.Round(miles*feetPerMile)))
	case miles < 10:
		return fmt.Sprintf("%.1f mi", miles)
	default:
		return fmt.Sprintf("%d mi", int(math.Round(miles)))
	}
}

// FormatDisplay renders a location header: "City, ST zip", the zip alone,
// or "Location unknown".
func FormatDisplay(loc *domain.Location) string {
	switch {
	case loc == nil || loc.ZipCode == "":
		return "Location unknown"
	case loc.City != "" && loc.State != "":
		return fmt.Sprintf("%s, %s %s", loc.City, loc.State, loc.ZipCode)
	default:
		return loc.ZipCode
	}
}
