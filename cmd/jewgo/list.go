package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/jewgo/jewgo/internal/catalog"
	"github.com/jewgo/jewgo/internal/deeplink"
	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/location"
	"github.com/jewgo/jewgo/internal/search"
)

// lister prints the first page of a category without the TUI
type lister struct {
	ctrl      *catalog.Controller
	events    domain.EventsRepository
	seekers   domain.JobSeekersRepository
	locations *location.Store // optional
	logger    *slog.Logger
	out       io.Writer
}

// listRequest is what to print
type listRequest struct {
	category string
	query    string
	filters  deeplink.Filters // events only
	seekers  bool             // job seekers instead of postings
}

func (l lister) run(ctx context.Context, req listRequest) error {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	var items []domain.CategoryItem
	switch {
	case req.seekers:
		var msg string
		items, msg = catalog.LoadJobSeekers(ctx, l.seekers, l.logger)
		if msg != "" {
			return errors.New(msg)
		}

	case req.category == catalog.CategoryEvents:
		ec := catalog.NewEventsController(l.events, l.logger)
		defer ec.Close()
		ec.SetFilters(ctx, domain.EventFilters{Category: req.filters.Category, IsFree: req.filters.IsFree})
		ec.SetQuery(ctx, req.query)
		if snap := ec.Snapshot(); snap.Error != "" {
			return errors.New(snap.Error)
		}
		items = ec.Items()

	default:
		l.ctrl.Mount(ctx)
		snap := l.ctrl.Snapshot()
		if snap.Error != "" {
			return errors.New(snap.Error)
		}
		items = snap.Data
	}

	var origin *domain.Coordinate
	if l.locations != nil {
		if loc := l.locations.CurrentLocation(ctx); loc != nil {
			c := loc.Coordinate()
			origin = &c
		}
	}

	return printItems(l.out, rankByQuery(items, req.query), origin, req.category == catalog.CategoryEvents && !req.seekers)
}

// rankByQuery puts the closest title matches first and keeps the rest in
// server order
func rankByQuery(items []domain.CategoryItem, query string) []domain.CategoryItem {
	if query == "" {
		return items
	}
	ordered := make([]domain.CategoryItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, r := range search.Rank(query, items) {
		ordered = append(ordered, r.Item)
		seen[r.Item.ID] = true
	}
	for _, item := range items {
		if !seen[item.ID] {
			ordered = append(ordered, item)
		}
	}
	return ordered
}

// printItems writes items as an aligned table. Events get a link column.
func printItems(out io.Writer, items []domain.CategoryItem, origin *domain.Coordinate, links bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := "ID\tTITLE\tCITY\tRATING\tDISTANCE"
	if links {
		header += "\tLINK"
	}
	fmt.Fprintln(w, header)

	for _, item := range items {
		rating, distance := "-", "-"
		if item.HasRating() {
			rating = fmt.Sprintf("%.1f", item.RatingValue())
		}
		if origin != nil && item.Coordinate != nil {
			distance = location.FormatDistance(location.Distance(*origin, *item.Coordinate))
		}
		city := item.City
		if city == "" {
			city = "-"
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", item.ID, item.Title, city, rating, distance)
		if links {
			row += "\t" + deeplink.EventUniversalLink(item.ID)
		}
		fmt.Fprintln(w, row)
	}
	return w.Flush()
}
