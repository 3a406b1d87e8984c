package catalog

import (
	"unicode"
	"unicode/utf8"
)

// Category keys understood by the listings API
const (
	CategoryMikvah   = "mikvah"
	CategoryEatery   = "eatery"
	CategoryShul     = "shul"
	CategoryStores   = "stores"
	CategoryShuk     = "shuk"
	CategorySpecials = "specials"
	CategoryJobs     = "jobs"
	CategoryEvents   = "events"
)

// Categories lists the browsable categories in display order.
var Categories = []string{
	CategoryEatery,
	CategoryShul,
	CategoryMikvah,
	CategoryStores,
	CategoryShuk,
	CategorySpecials,
	CategoryJobs,
	CategoryEvents,
}

var entityTypes = map[string]string{
	CategoryMikvah: "mikvah",
	CategoryEatery: "restaurant",
	CategoryShul:   "synagogue",
	CategoryStores: "store",
	CategoryShuk:   "store",
}

var displayNames = map[string]string{
	CategoryMikvah:   "Mikvah",
	CategoryEatery:   "Eatery",
	CategoryShul:     "Shul",
	CategoryStores:   "Stores",
	CategoryShuk:     "Shuk",
	CategorySpecials: "Specials",
	CategoryJobs:     "Jobs",
	CategoryEvents:   "Events",
	"shtetl":         "Shtetl",
	"shidduch":       "Shidduch",
	"social":         "Social",
}

var fallbackErrors = map[string]string{
	CategoryMikvah:   "Unable to load mikvahs right now. Pull to refresh to try again.",
	CategoryShul:     "Unable to load shuls right now. Pull to refresh to try again.",
	CategoryEatery:   "Unable to load eateries right now. Pull to refresh to try again.",
	CategoryStores:   "Unable to load stores right now. Pull to refresh to try again.",
	CategorySpecials: "Unable to load specials right now. Pull to refresh to try again.",
	CategoryJobs:     "Unable to load jobs right now. Pull to refresh to try again.",
}

// EntityType maps a category key to the backend entity type. Unknown keys
// pass through unchanged.
func EntityType(category string) string {
	if t, ok := entityTypes[category]; ok {
		return t
	}
	return category
}

// DisplayName returns the human label for a category key.
func DisplayName(category string) string {
	if name, ok := displayNames[category]; ok {
		return name
	}
	if category == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(category)
	return string(unicode.ToUpper(r)) + category[size:]
}

// ErrorMessage returns the user-facing message for a failed page load.
// Categories with dedicated copy get it; the rest use the server message
// when there is one.
func ErrorMessage(category string, err error) string {
	if msg, ok := fallbackErrors[category]; ok {
		return msg
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Failed to load data"
}
