package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/appctx"
	"github.com/scottbw/dvnt/internal/completion"
	"github.com/scottbw/dvnt/internal/deviantart"
	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/page"
)

// NewBrowseCmd creates the browse command.
func NewBrowseCmd() *cobra.Command {
	var flags listFlags
	var tag string
	var interactive bool
	var setDefault bool

	cmd := &cobra.Command{
		Use:   "browse [feed]",
		Short: "Browse deviation feeds",
		Long: fmt.Sprintf(`Browse a deviation feed.

Feeds: %s. Without a feed, the saved default tab is used, or popular.

Use --tag to browse deviations for a tag instead of a feed, and
--set-default to save the given feed as the default tab.`,
			strings.Join(deviantart.BrowseTypes(), ", ")),
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completion.FeedCompletion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if tag != "" && len(args) > 0 {
				return output.ErrUsage("Use either a feed or --tag, not both")
			}
			if setDefault && len(args) == 0 {
				return output.ErrUsage("--set-default needs a feed argument")
			}

			title := ""
			var src *page.Source[models.Deviation]
			if tag != "" {
				title = "#" + tag
				src = app.Service.TagSource(tag)
			} else {
				if len(args) > 0 {
					title = args[0]
				} else {
					title = defaultFeed(app)
				}
				src, err = app.Service.BrowseSource(title)
				if err != nil {
					return err
				}
				if setDefault {
					if err := app.Prefs.SetDefaultTab(title); err != nil {
						return err
					}
				}
			}

			if interactive && app.IsInteractive() {
				return browseInteractive(cmd, app, "Browse: "+title, src)
			}

			devs, err := collect(cmd.Context(), src, flags)
			if err != nil {
				return err
			}
			devs = filterDeviations(app, devs)

			return app.OK(devs, output.WithSummary(deviationSummary(app, len(devs), "deviation")))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Browse deviations for a tag")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse interactively")
	cmd.Flags().BoolVar(&setDefault, "set-default", false, "Save the feed as the default tab")

	return cmd
}

// defaultFeed returns the saved default tab, falling back to popular.
func defaultFeed(app *appctx.App) string {
	if p, err := app.Prefs.Load(); err == nil && p.DefaultTab != "" {
		return p.DefaultTab
	}
	return "popular"
}
