package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jewgo/jewgo/internal/catalog"
	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/favorites"
	"github.com/jewgo/jewgo/internal/location"
	"github.com/jewgo/jewgo/internal/search"
	"github.com/jewgo/jewgo/internal/tui/components"
	"github.com/jewgo/jewgo/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateSearching
	StateHelp
)

// Pane is the focused column
type Pane int

const (
	PaneSidebar Pane = iota
	PaneGrid
)

// Layout proportions
const (
	SidebarPercent   = 22
	InspectorPercent = 33
	MinColumnWidth   = 18

	// Vertical layout: header line and footer line
	ChromeHeight = 2

	// prefetchRows is how close to the end the cursor gets before the next
	// page is requested
	prefetchRows = 3

	statusDuration = 3 * time.Second
)

// Deps are the data layer objects the TUI renders
type Deps struct {
	Ctx       context.Context
	Catalog   *catalog.Controller
	Runtime   *catalog.Runtime // optional, marks categories busy elsewhere
	Favorites *favorites.Controller
	Location  *location.Store // optional
	Opener    URLOpener       // optional
	Logger    *slog.Logger
	Account   string // signed-in email, empty for guests

	HideInspector bool
}

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Ready bool

	ctx       context.Context
	catalog   *catalog.Controller
	runtime   *catalog.Runtime
	favorites *favorites.Controller
	location  *location.Store
	opener    URLOpener
	logger    *slog.Logger
	account   string

	snapshots <-chan catalog.Snapshot
	locations <-chan location.State

	// UI Components
	Sidebar   components.Sidebar
	Grid      components.Grid
	Inspector components.Inspector
	Omnibar   components.Omnibar
	Spinner   spinner.Model
	Help      help.Model

	Focus         Pane
	ShowInspector bool

	// Data
	Snapshot catalog.Snapshot
	Where    location.State
	Filters  search.Filters

	// Dimensions
	Width  int
	Height int

	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model. The model subscribes to the
// catalog controller and the location store; Close releases both.
func NewModel(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx := deps.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	m := Model{
		State:         StateBrowsing,
		ctx:           ctx,
		catalog:       deps.Catalog,
		runtime:       deps.Runtime,
		favorites:     deps.Favorites,
		location:      deps.Location,
		opener:        deps.Opener,
		logger:        logger,
		account:       deps.Account,
		Sidebar:       components.NewSidebar(catalog.Categories),
		Grid:          components.NewGrid(),
		Inspector:     components.NewInspector(),
		Omnibar:       components.NewOmnibar(),
		Spinner:       sp,
		Help:          h,
		Focus:         PaneGrid,
		ShowInspector: !deps.HideInspector,
		Filters:       search.DefaultFilters(),
		Snapshot:      deps.Catalog.Snapshot(),
	}

	m.snapshots, _ = deps.Catalog.Subscribe()
	if deps.Location != nil {
		m.locations, _ = deps.Location.Subscribe()
		m.Where = deps.Location.State()
	}
	if deps.Favorites != nil {
		m.Grid.SetFavorited(deps.Favorites.IsFavorited)
	}

	m.Sidebar.Select(m.Snapshot.Category)
	m.setFocus(PaneGrid)
	m.applySnapshot()
	return m
}

// Init starts the subscriptions and the first load
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.Spinner.Tick,
		waitForSnapshot(m.snapshots),
		MountCmd(m.ctx, m.catalog),
	}
	if m.locations != nil {
		cmds = append(cmds, waitForLocation(m.locations))
	}
	if m.favorites != nil {
		cmds = append(cmds, LoadFavoritesCmd(m.ctx, m.favorites))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		m.markBusy()
		if m.Snapshot.Loading || m.Snapshot.Refreshing || m.Sidebar.AnyBusy() {
			m.Sidebar.SetSpinnerFrame(m.Sidebar.SpinnerFrame() + 1)
		}
		return m, cmd

	case SnapshotMsg:
		m.Snapshot = msg.Snapshot
		m.applySnapshot()
		return m, tea.Batch(waitForSnapshot(m.snapshots), m.prefetch())

	case LocationMsg:
		m.Where = msg.State
		m.applySnapshot()
		cmd := waitForLocation(m.locations)
		if msg.State.Error != "" {
			return m, tea.Batch(cmd, m.setStatus(msg.State.Error, true))
		}
		return m, cmd

	case FavoritesMsg:
		if msg.Snapshot.Error != "" {
			return m, m.setStatus(msg.Snapshot.Error, true)
		}
		return m, nil

	case FavoriteToggledMsg:
		if !msg.OK {
			return m, m.setStatus(msg.Error, true)
		}
		verb := "Removed from favorites"
		if m.favorites.IsFavorited(msg.EntityID) {
			verb = "Added to favorites"
		}
		return m, m.setStatus(fmt.Sprintf("%s: %s", verb, msg.Title), false)

	case StatusMsg:
		return m, m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	if m.State == StateSearching {
		var cmd tea.Cmd
		m.Omnibar, cmd, _ = m.Omnibar.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Close releases the subscriptions. The caller owns the controllers.
func (m Model) Close() {
	m.catalog.Close()
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(statusDuration)
}

// origin is where distances are measured from, nil when unknown
func (m Model) origin() *domain.Coordinate {
	if m.Where.Location == nil {
		return nil
	}
	c := m.Where.Location.Coordinate()
	return &c
}

// applySnapshot pushes the controller state into the components
func (m *Model) applySnapshot() {
	snap := m.Snapshot
	origin := m.origin()

	m.Grid.SetOrigin(origin)
	m.Inspector.SetOrigin(origin)
	m.Grid.SetItems(m.Filters.Apply(snap.Data, origin))
	m.Grid.SetBreadcrumb(m.breadcrumb())

	switch {
	case snap.Refreshing:
		m.Grid.SetFooter("Refreshing...")
	case snap.Loading:
		m.Grid.SetFooter("Loading...")
	case snap.Error != "":
		m.Grid.SetFooter(snap.Error)
	case !snap.HasMore && len(snap.Data) > 0:
		m.Grid.SetFooter("End of results")
	default:
		m.Grid.SetFooter("")
	}

	state := components.CategoryState{Status: components.StatusLoaded, Count: len(snap.Data)}
	switch {
	case snap.Loading || snap.Refreshing:
		state.Status = components.StatusLoading
	case snap.Error != "":
		state.Status = components.StatusError
	case len(snap.Data) == 0 && snap.HasMore:
		state.Status = components.StatusIdle
	}
	m.Sidebar.SetState(snap.Category, state)

	m.syncInspector()
}

func (m *Model) syncInspector() {
	item := m.Grid.SelectedItem()
	fav := false
	if item != nil && m.favorites != nil {
		fav = m.favorites.IsFavorited(item.ID)
	}
	m.Inspector.SetItem(item, fav)
}

func (m Model) breadcrumb() string {
	crumb := catalog.DisplayName(m.Snapshot.Category)
	if m.Snapshot.Query != "" {
		crumb += fmt.Sprintf(" › \"%s\"", m.Snapshot.Query)
	}
	if n := m.Filters.ActiveCount(); n > 0 {
		crumb += fmt.Sprintf(" · %d filters", n)
	}
	return crumb
}

// prefetch loads the next page when the cursor is close to the end of a
// list that has more
func (m Model) prefetch() tea.Cmd {
	snap := m.Snapshot
	if snap.Loading || snap.Refreshing || !snap.HasMore || snap.Error != "" {
		return nil
	}
	if m.Grid.IsFiltering() || !m.Grid.NearEnd(prefetchRows) {
		return nil
	}
	return LoadMoreCmd(m.ctx, m.catalog)
}

// markBusy flags the other categories that still have a fetch in flight
func (m *Model) markBusy() {
	if m.runtime == nil {
		return
	}
	for _, c := range catalog.Categories {
		m.Sidebar.SetBusy(c, c != m.Snapshot.Category && m.runtime.Loading(c))
	}
}

// switchCategory points the controller at another category. A cached
// category is restored without a request.
func (m *Model) switchCategory(category string) tea.Cmd {
	if category == "" || category == m.Snapshot.Category {
		return nil
	}
	m.logger.Debug("switching category", "category", category)
	m.Grid.Reset()
	m.catalog.SetCategory(category)
	m.Snapshot = m.catalog.Snapshot()
	m.applySnapshot()
	return MountCmd(m.ctx, m.catalog)
}

// submitQuery runs a server search in the current category
func (m *Model) submitQuery(query string) tea.Cmd {
	if query == m.Snapshot.Query {
		return nil
	}
	m.logger.Debug("searching", "category", m.Snapshot.Category, "query", query)
	m.Grid.Reset()
	m.catalog.SetQuery(query)
	m.Snapshot = m.catalog.Snapshot()
	m.applySnapshot()
	return MountCmd(m.ctx, m.catalog)
}

func (m *Model) setFocus(p Pane) {
	m.Focus = p
	m.Sidebar.SetFocused(p == PaneSidebar)
	m.Grid.SetFocused(p == PaneGrid)
}
