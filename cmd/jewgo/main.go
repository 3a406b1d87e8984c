package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jewgo/jewgo/internal/adapter"
	"github.com/jewgo/jewgo/internal/adapter/source"
	"github.com/jewgo/jewgo/internal/adapter/source/jewgo"
	"github.com/jewgo/jewgo/internal/catalog"
	"github.com/jewgo/jewgo/internal/deeplink"
	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/favorites"
	"github.com/jewgo/jewgo/internal/location"
	"github.com/jewgo/jewgo/internal/metrics"
	"github.com/jewgo/jewgo/internal/store"
	"github.com/jewgo/jewgo/internal/tui"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// listTimeout bounds a plain --list run
const listTimeout = 30 * time.Second

// options are the command line flags of a browse run
type options struct {
	list    string
	query   string
	open    string
	seekers bool
}

func main() {
	var (
		showVersion bool
		opts        options
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.list, "list", "", "print one page of a category and exit")
	flag.StringVar(&opts.query, "q", "", "search query for the first category")
	flag.StringVar(&opts.open, "open", "", "open an events link (jewgo://events/... or https://jewgo.app/events/...)")
	flag.BoolVar(&opts.seekers, "seekers", false, "with -list jobs, print job seekers instead of postings")
	flag.Parse()

	if showVersion {
		fmt.Printf("jewgo %s\n", Version)
		return
	}

	var err error
	switch flag.Arg(0) {
	case "login":
		err = runLogin(flag.Arg(1))
	case "logout":
		err = runLogout()
	case "":
		err = run(opts)
	default:
		err = fmt.Errorf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the config and installs the file logger
func setup() (*adapter.Config, *slog.Logger, io.Closer, error) {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
		closer = io.NopCloser(strings.NewReader(""))
	}
	slog.SetDefault(logger)
	return cfg, logger, closer, nil
}

func run(opts options) error {
	cfg, logger, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("starting jewgo", "version", Version, "server", cfg.Server.URL, "signedIn", cfg.IsConfigured())

	req := listRequest{category: cfg.UI.StartCategory, query: opts.query, seekers: opts.seekers}
	if opts.open != "" {
		if !deeplink.IsEventsLink(opts.open) {
			return fmt.Errorf("cannot open %q: %w", opts.open, deeplink.ErrNotEventsLink)
		}
		link, err := deeplink.Parse(opts.open)
		if err != nil {
			return fmt.Errorf("cannot open %q: %w", opts.open, err)
		}
		req.category, req.query, req.filters = catalog.CategoryEvents, link.Filters.Search, link.Filters
		logger.Info("opening link", "target", link.Target, "event", link.EventID)
	}

	plain := opts.list != "" || !term.IsTerminal(int(os.Stdout.Fd()))
	if opts.list != "" {
		req.category = opts.list
	}
	if !isCategory(req.category) {
		return fmt.Errorf("unknown category %q (want one of %s)", req.category, strings.Join(catalog.Categories, ", "))
	}
	if req.seekers && req.category != catalog.CategoryJobs {
		return fmt.Errorf("-seekers only applies to %q", catalog.CategoryJobs)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Metrics.Listen != "" {
		go serveMetrics(cfg.Metrics.Listen, logger)
	}

	localStore, err := store.NewLocalStore(adapter.GetCachePath(), cfg.Server.URL)
	if err != nil {
		logger.Warn("cache unavailable, running in memory", "error", err)
		if localStore, err = store.NewLocalStore("", cfg.Server.URL); err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
	}
	defer localStore.Close()

	client, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	catalogCfg := catalog.Config{
		PageSize:     cfg.Catalog.PageSize,
		ReapInterval: cfg.Catalog.ReaperInterval,
		StaleAfter:   cfg.Catalog.StaleAfter,
	}
	if cfg.Catalog.PersistCache {
		catalogCfg.Store = localStore
	}
	rt := catalog.NewRuntime(source.Sources(client), catalogCfg, logger)
	defer rt.Close()
	rt.Foreground(ctx)

	ctrl := rt.NewController(catalog.Options{Category: req.category, Query: req.query})
	defer ctrl.Close()

	locations := location.NewStore(location.Options{
		Platform: location.Platform(cfg.Location.Platform),
		Provider: location.NewStaticProvider(configuredLocation(cfg)),
		Geocoder: source.NewGeocoder(cfg, logger),
	}, logger)
	defer locations.Close()

	if plain {
		l := lister{
			ctrl:      ctrl,
			events:    client,
			seekers:   client,
			locations: locations,
			logger:    logger,
			out:       os.Stdout,
		}
		return l.run(ctx, req)
	}

	// The watch begins once the TUI has been granted location access
	stopWatch := locations.Watch(ctx)
	defer stopWatch()

	favs := favorites.NewController(source.Favorites(client, localStore, logger), logger)

	account := ""
	if cfg.IsConfigured() {
		account = cfg.Server.Email
	}

	model := tui.NewModel(tui.Deps{
		Ctx:       ctx,
		Catalog:   ctrl,
		Runtime:   rt,
		Favorites: favs,
		Location:  locations,
		Opener:    adapter.NewOpener(cfg.Browser, logger),
		Logger:    logger,
		Account:   account,

		HideInspector: cfg.UI.HideInspector,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	// Suspending the UI drops in-flight requests; the next start re-fetches
	rt.Background()
	logger.Info("shutting down")
	return nil
}

func runLogin(email string) error {
	cfg, logger, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	if email == "" {
		email = cfg.Server.Email
	}

	result, err := jewgo.NewAuthFlow(logger).Run(context.Background(), cfg.Server.URL, email)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := adapter.SaveToken(result.Token, result.Email); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run jewgo again to browse with your favorites.")
	return nil
}

func runLogout() error {
	cfg, _, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	cfg.Server.Token = ""
	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	// Cached pages and guest favorites belong to the old session
	if err := adapter.ClearCache(); err != nil {
		return err
	}
	fmt.Println("✓ Signed out")
	return nil
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics listener stopped", "error", err)
	}
}

// configuredLocation is the fixed position from the config, nil when
// none is set
func configuredLocation(cfg *adapter.Config) *domain.Location {
	if !cfg.Location.HasLocation() {
		return nil
	}
	return &domain.Location{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Accuracy:  cfg.Location.Accuracy,
		Timestamp: time.Now(),
	}
}

func isCategory(category string) bool {
	for _, c := range catalog.Categories {
		if c == category {
			return true
		}
	}
	return false
}
