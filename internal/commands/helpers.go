// Package commands implements the CLI commands.
package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/appctx"
	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/page"
	"github.com/scottbw/dvnt/internal/presenter"
	"github.com/scottbw/dvnt/internal/tui"
	"github.com/scottbw/dvnt/internal/urlarg"
)

// listFlags are the pagination flags shared by listing commands.
type listFlags struct {
	limit  int
	offset int
	all    bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "Maximum number of items (0 uses one page)")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "Position to start fetching from")
	cmd.Flags().BoolVar(&f.all, "all", false, "Fetch all pages")
}

// collect drives a page source according to the pagination flags:
// --all loops until the source is exhausted, --limit caps the total,
// and by default a single page is fetched.
func collect[T any](ctx context.Context, src *page.Source[T], f listFlags) ([]T, error) {
	if f.offset > 0 {
		src.Seek(f.offset)
	}
	if f.all {
		return src.FetchAll(ctx, f.limit)
	}
	if f.limit > 0 {
		return src.FetchAll(ctx, f.limit)
	}
	return src.FetchNext(ctx)
}

func requireApp(cmd *cobra.Command) (*appctx.App, error) {
	app := appctx.FromContext(cmd.Context())
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}

// deviationSummary renders the one-line summary for a deviation list.
func deviationSummary(app *appctx.App, n int, what string) string {
	return fmt.Sprintf("%s %s", app.Locale.FormatCount(n), plural(n, what))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// deviationItems converts deviations to browser rows.
func deviationItems(devs []models.Deviation) []tui.Item {
	items := make([]tui.Item, len(devs))
	for i, d := range devs {
		author := ""
		if d.Author != nil {
			author = "by " + d.Author.Username
		}
		items[i] = tui.Item{
			ID:          d.DeviationID,
			Title:       presenter.Truncate(d.Title, 60),
			Description: author,
		}
	}
	return items
}

// browseInteractive shows the paginated browser over a deviation
// source and prints the selected deviation, if any.
func browseInteractive(cmd *cobra.Command, app *appctx.App, title string, src *page.Source[models.Deviation]) error {
	fetch := func(ctx context.Context) ([]tui.Item, bool, error) {
		devs, err := src.FetchNext(ctx)
		if err != nil {
			return nil, false, err
		}
		devs = filterDeviations(app, devs)
		return deviationItems(devs), src.HasMore(), nil
	}

	selected, err := tui.Browse(cmd.Context(), title, fetch)
	if err != nil {
		return err
	}
	if selected == nil {
		return nil
	}

	dev, err := app.Service.Deviation(cmd.Context(), selected.ID)
	if err != nil {
		return err
	}
	return app.OK(dev, output.WithSummary(dev.Title))
}

// filterDeviations applies the artist preference filters to a listing.
func filterDeviations(app *appctx.App, devs []models.Deviation) []models.Deviation {
	p, err := app.Prefs.Load()
	if err != nil {
		return devs
	}
	return p.FilterDeviations(devs)
}

// splitUsernames parses a comma-separated recipient list. Entries may
// be bare usernames, @handles or profile URLs.
func splitUsernames(s string) []string {
	var out []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, urlarg.ExtractUsername(u))
		}
	}
	return out
}
