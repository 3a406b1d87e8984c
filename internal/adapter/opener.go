package adapter

import (
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jewgo/jewgo/internal/domain"
)

// directionsBase is the maps URL directions links are built on
const directionsBase = "https://www.google.com/maps/dir/"

// Opener opens web links in the configured browser or the system default
type Opener struct {
	command string   // configured browser command, empty for system default
	args    []string // additional arguments for the browser
	logger  *slog.Logger

	// start runs a command without waiting for it
	start func(name string, args ...string) error
	// lookPath reports whether a command is installed
	lookPath func(file string) (string, error)
	goos     string
}

// NewOpener creates an Opener from the browser config
func NewOpener(cfg BrowserConfig, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		command:  cfg.Command,
		args:     cfg.Args,
		logger:   logger,
		start:    startCommand,
		lookPath: exec.LookPath,
		goos:     runtime.GOOS,
	}
}

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens link in the configured browser, falling back to the system
// default handler
func (o *Opener) Open(link string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open %q: not a web link", link)
	}

	if o.command != "" {
		o.logger.Info("opening link", "command", o.command, "url", link)
		return o.openConfigured(link)
	}
	return o.openDefault(link)
}

func (o *Opener) openConfigured(link string) error {
	args := append([]string{}, o.args...)

	// On macOS a GUI browser is usually an app bundle, not a command
	if o.goos == "darwin" {
		if _, err := o.lookPath(o.command); err != nil {
			app := strings.TrimSuffix(filepath.Base(o.command), ".app")
			cmdArgs := []string{"-a", app}
			if len(args) > 0 {
				cmdArgs = append(cmdArgs, "--args")
				cmdArgs = append(cmdArgs, args...)
			}
			cmdArgs = append(cmdArgs, link)
			o.logger.Debug("using macOS 'open -a'", "app", app, "args", cmdArgs)
			return o.start("open", cmdArgs...)
		}
	}

	return o.start(o.command, append(args, link)...)
}

// openDefault opens the URL using the system default handler
func (o *Opener) openDefault(link string) error {
	o.logger.Info("opening link with system default", "os", o.goos, "url", link)

	switch o.goos {
	case "darwin":
		return o.start("open", link)
	case "windows":
		return o.start("cmd", "/c", "start", "", link)
	default:
		// Linux and other Unix-like systems
		return o.start("xdg-open", link)
	}
}

// DirectionsURL builds a maps link to an item. Coordinates win over the
// street address; an item with neither has no directions.
func DirectionsURL(item domain.CategoryItem) (string, bool) {
	var destination string
	if item.Coordinate != nil {
		destination = fmt.Sprintf("%f,%f", item.Coordinate.Latitude, item.Coordinate.Longitude)
	} else {
		var parts []string
		for _, p := range []string{strings.TrimSpace(item.Address), item.Location()} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		destination = strings.Join(parts, ", ")
	}

	q := url.Values{}
	q.Set("api", "1")
	q.Set("destination", destination)
	return directionsBase + "?" + q.Encode(), true
}
