package catalog

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/jewgo/jewgo/internal/domain"
)

// Transform validates a raw listing and builds the normalized item. It is
// the only place API payload fields are coerced. A listing without an id
// is rejected with domain.ErrInvalidItem; every other field falls back to
// a safe default.
func Transform(raw domain.Listing, category string) (domain.CategoryItem, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return domain.CategoryItem{}, fmt.Errorf("listing without id: %w", domain.ErrInvalidItem)
	}

	item := domain.CategoryItem{
		ID:          id,
		Title:       firstNonEmpty(raw.Title, raw.Name, "Untitled"),
		Description: strings.TrimSpace(raw.Description),
		Category:    firstNonEmpty(raw.CategoryName, DisplayName(category)),
		EntityType:  firstNonEmpty(raw.EntityType, EntityType(category)),
		ReviewCount: parseCount(raw.ReviewCount),
		Address:     strings.TrimSpace(raw.Address),
		City:        strings.TrimSpace(raw.City),
		State:       strings.TrimSpace(raw.State),
		ZipCode:     strings.TrimSpace(raw.ZipCode),
		Price:       normalizePrice(raw.PriceRange),
		KosherLevel: normalizeKosher(raw.KosherLevel),
	}

	item.ImageURL = strings.TrimSpace(raw.ImageURL)
	if item.ImageURL == "" {
		for _, img := range raw.Images {
			if img = strings.TrimSpace(img); img != "" {
				item.ImageURL = img
				break
			}
		}
	}

	if r, ok := parseFloat(raw.Rating); ok && r >= 0 && r <= 5 {
		item.Rating = &r
	}

	lat, latOK := parseFloat(raw.Latitude)
	lng, lngOK := parseFloat(raw.Longitude)
	if latOK && lngOK {
		c := domain.Coordinate{Latitude: lat, Longitude: lng}
		// 0,0 is what the backend sends for "no coordinates"
		if c.Valid() && (lat != 0 || lng != 0) {
			item.Coordinate = &c
		}
	}

	a := raw.Amenities
	item.IsOpen = a["is_open"]
	item.OpenWeekends = a["open_weekends"]
	item.HasParking = a["parking"]
	item.HasWifi = a["wifi"]
	item.HasAccessibility = a["accessible"]
	item.HasDelivery = a["delivery"]

	return item, nil
}

// TransformAll transforms a page, dropping invalid listings with a warning.
func TransformAll(raws []domain.Listing, category string, logger *slog.Logger) []domain.CategoryItem {
	if logger == nil {
		logger = slog.Default()
	}
	items := make([]domain.CategoryItem, 0, len(raws))
	for i, raw := range raws {
		item, err := Transform(raw, category)
		if err != nil {
			logger.Warn("dropping invalid listing", "error", err, "category", category, "index", i)
			continue
		}
		items = append(items, item)
	}
	return items
}

// TransformSpecial renders an active special as a grid item.
func TransformSpecial(s domain.ActiveSpecial) (domain.CategoryItem, error) {
	if strings.TrimSpace(s.ID) == "" {
		return domain.CategoryItem{}, fmt.Errorf("special without id: %w", domain.ErrInvalidItem)
	}

	item := domain.CategoryItem{
		ID:          s.ID,
		Title:       firstNonEmpty(s.Title, "Special"),
		Description: specialDescription(s),
		Category:    DisplayName(CategorySpecials),
		EntityType:  CategorySpecials,
		City:        s.City,
		State:       s.State,
		Price:       s.DiscountLabel,
		IsOpen:      s.MaxClaimsTotal == 0 || s.ClaimsTotal < s.MaxClaimsTotal,
	}
	if s.Location != nil && s.Location.Valid() {
		c := *s.Location
		item.Coordinate = &c
	}
	return item, nil
}

func specialDescription(s domain.ActiveSpecial) string {
	var parts []string
	if s.BusinessName != "" {
		parts = append(parts, s.BusinessName)
	}
	if !s.ValidUntil.IsZero() {
		parts = append(parts, "until "+s.ValidUntil.Format("Jan 2"))
	}
	return strings.Join(parts, " · ")
}

// TransformJobSeeker renders a job seeker profile as a grid item.
func TransformJobSeeker(js domain.JobSeeker) (domain.CategoryItem, error) {
	if strings.TrimSpace(js.ID) == "" {
		return domain.CategoryItem{}, fmt.Errorf("job seeker without id: %w", domain.ErrInvalidItem)
	}

	item := domain.CategoryItem{
		ID:           js.ID,
		Title:        firstNonEmpty(js.FullName, "Job Seeker"),
		Description:  strings.TrimSpace(js.Summary),
		Category:     "Jobs",
		EntityType:   "job_seeker",
		Address:      strings.Trim(js.City+", "+js.State, ", "),
		City:         js.City,
		State:        js.State,
		ZipCode:      js.ZipCode,
		Price:        fmt.Sprintf("%d years", js.ExperienceYears),
		IsOpen:       true,
		OpenWeekends: true,
	}
	if js.KosherEnvironmentPreferred {
		item.KosherLevel = domain.KosherGlatt
	}
	return item, nil
}

// TransformEvent renders an event as a grid item.
func TransformEvent(ev domain.Event) (domain.CategoryItem, error) {
	if strings.TrimSpace(ev.ID) == "" {
		return domain.CategoryItem{}, fmt.Errorf("event without id: %w", domain.ErrInvalidItem)
	}

	item := domain.CategoryItem{
		ID:          ev.ID,
		Title:       firstNonEmpty(ev.Title, "Event"),
		Description: strings.TrimSpace(ev.Description),
		ImageURL:    ev.FlyerURL,
		Category:    CategoryEvents,
		EntityType:  "event",
		Address:     ev.Address,
		City:        ev.City,
		State:       ev.State,
		ZipCode:     ev.ZipCode,
	}
	if ev.IsFree {
		item.Price = "Free"
	}
	if ev.Coordinate != nil && ev.Coordinate.Valid() {
		c := *ev.Coordinate
		item.Coordinate = &c
	}
	return item, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseCount(s string) int {
	f, ok := parseFloat(s)
	if !ok || f < 0 {
		return 0
	}
	return int(f)
}

// normalizePrice accepts "$".."$$$$" or a 1-4 level and returns dollar signs.
func normalizePrice(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.Trim(s, "$") == "" && len(s) <= 4 {
		return s
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 4 {
		return strings.Repeat("$", n)
	}
	return ""
}

func normalizeKosher(s string) domain.KosherLevel {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	switch domain.KosherLevel(s) {
	case domain.KosherGlatt, domain.KosherChalavYisrael, domain.KosherPasYisrael:
		return domain.KosherLevel(s)
	}
	return domain.KosherUnknown
}
