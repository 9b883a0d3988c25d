// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/scottbw/dvnt/internal/api"
	"github.com/scottbw/dvnt/internal/auth"
	"github.com/scottbw/dvnt/internal/config"
	"github.com/scottbw/dvnt/internal/deviantart"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/prefs"
	"github.com/scottbw/dvnt/internal/presenter"
	"github.com/scottbw/dvnt/internal/scrape"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config  *config.Config
	Auth    *auth.Manager
	API     *api.Client
	Service *deviantart.Service
	Prefs   *prefs.Store
	Scraper *scrape.Scraper
	Locale  presenter.Locale
	Output  *output.Writer

	// Flags holds the global flag values
	Flags GlobalFlags
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	// Output format flags
	JSON    bool
	YAML    bool
	Quiet   bool
	Styled  bool // Force ANSI styled output (even when piped)
	IDsOnly bool
	Count   bool

	// Behavior flags
	Verbose   int // 0=off, 1=request traces
	NoBrowser bool
}

// NewApp creates a new App with the given configuration.
func NewApp(cfg *config.Config) *App {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	authMgr := auth.NewManager(cfg, auth.NewStore(config.GlobalConfigDir()), httpClient)
	client := api.NewClient(cfg, authMgr)

	format := output.FormatAuto
	switch cfg.Format {
	case "json":
		format = output.FormatJSON
	case "yaml":
		format = output.FormatYAML
	case "quiet":
		format = output.FormatQuiet
	}

	return &App{
		Config:  cfg,
		Auth:    authMgr,
		API:     client,
		Service: deviantart.New(client, cfg),
		Prefs:   prefs.NewStore(config.GlobalConfigDir()),
		Scraper: scrape.New(),
		Locale:  presenter.DetectLocale(),
		Output: output.New(output.Options{
			Format: format,
			Writer: os.Stdout,
		}),
	}
}

// ApplyFlags applies global flag values to the app configuration.
// Specific modes win over general ones when several are set.
func (a *App) ApplyFlags() {
	switch {
	case a.Flags.IDsOnly:
		a.setFormat(output.FormatIDs)
	case a.Flags.Count:
		a.setFormat(output.FormatCount)
	case a.Flags.Quiet:
		a.setFormat(output.FormatQuiet)
	case a.Flags.JSON:
		a.setFormat(output.FormatJSON)
	case a.Flags.YAML:
		a.setFormat(output.FormatYAML)
	case a.Flags.Styled:
		a.setFormat(output.FormatStyled)
	}

	verboseLevel := a.Flags.Verbose
	if debugEnv := os.Getenv("DVNT_DEBUG"); debugEnv != "" {
		if level, err := strconv.Atoi(debugEnv); err == nil {
			if level > verboseLevel {
				verboseLevel = level
			}
		} else if debugEnv == "true" {
			verboseLevel = 1
		}
	}

	if verboseLevel > 0 {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		a.API.SetLogger(logger)
	}
}

func (a *App) setFormat(f output.Format) {
	a.Output = output.New(output.Options{Format: f, Writer: os.Stdout})
}

// OK outputs a success response.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	return a.Output.OK(data, opts...)
}

// Err outputs an error response.
func (a *App) Err(err error) error {
	return a.Output.Err(err)
}

// IsInteractive returns true if the terminal supports interactive TUI.
func (a *App) IsInteractive() bool {
	if a.Flags.JSON || a.Flags.YAML || a.Flags.Quiet || a.Flags.IDsOnly || a.Flags.Count {
		return false
	}
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// WithApp stores the app in the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
