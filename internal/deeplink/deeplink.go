// Package deeplink parses and builds links into the events vertical:
// jewgo://events[/{id}] and https://jewgo.app/events[/{id}], with optional
// category, search and isFree query parameters.
package deeplink

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

const (
	appScheme     = "jewgo"
	universalBase = "https://jewgo.app/events"
	appBase       = "jewgo://events"
)

var (
	// ErrNotEventsLink is returned for links outside the events vertical
	ErrNotEventsLink = errors.New("not an events link")

	eventIDPattern = regexp.MustCompile(`events/([^/?#]+)`)
)

// Target is where an events link points
type Target int

const (
	// TargetList is the events list screen
	TargetList Target = iota
	// TargetDetail is a single event
	TargetDetail
)

// Filters are the list filters a link can carry
type Filters struct {
	Category string
	Search   string
	IsFree   bool
}

// Link is a parsed events link
type Link struct {
	Target  Target
	EventID string
	Filters Filters
}

// IsEventsLink reports whether raw looks like an events link
func IsEventsLink(raw string) bool {
	return strings.Contains(raw, "events")
}

// Parse reads an app or universal events link.
func Parse(raw string) (Link, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Link{}, err
	}

	// jewgo://events/42 puts "events" in the host
	segments := splitPath(u.Path)
	if u.Scheme == appScheme && u.Host != "" {
		segments = append([]string{u.Host}, segments...)
	}
	if len(segments) == 0 || segments[0] != "events" || len(segments) > 2 {
		return Link{}, ErrNotEventsLink
	}

	q := u.Query()
	link := Link{
		Target: TargetList,
		Filters: Filters{
			Category: q.Get("category"),
			Search:   q.Get("search"),
			IsFree:   q.Get("isFree") == "true",
		},
	}
	if len(segments) == 2 {
		link.Target = TargetDetail
		link.EventID = segments[1]
	}
	return link, nil
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ExtractEventID returns the id following "events/" anywhere in raw.
func ExtractEventID(raw string) (string, bool) {
	m := eventIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EventLink builds the app link for one event
func EventLink(eventID string) string {
	return appBase + "/" + url.PathEscape(eventID)
}

// EventUniversalLink builds the web link for one event
func EventUniversalLink(eventID string) string {
	return universalBase + "/" + url.PathEscape(eventID)
}

// ListLink builds the app link for the events list
func ListLink(f Filters) string {
	return appBase + encode(f)
}

// ListUniversalLink builds the web link for the events list
func ListUniversalLink(f Filters) string {
	return universalBase + encode(f)
}

// encode keeps parameters in category, search, isFree order.
func encode(f Filters) string {
	var parts []string
	if f.Category != "" {
		parts = append(parts, "category="+url.QueryEscape(f.Category))
	}
	if f.Search != "" {
		parts = append(parts, "search="+url.QueryEscape(f.Search))
	}
	if f.IsFree {
		parts = append(parts, "isFree=true")
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}
