package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/urlarg"
)

// NewArtistsCmd creates the artists command group: local per-user
// favorite and blocked lists plus the filters built on them.
func NewArtistsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artists",
		Short: "Manage favorite and blocked artists",
		Long: `Manage the local favorite and blocked artist lists. These are
client-side preferences, not API state: blocked artists are hidden
from every listing, and the favorites-only filter restricts listings
to favorites.`,
		RunE: runArtistsList,
	}

	cmd.AddCommand(
		newArtistsFavoriteCmd(),
		newArtistsBlockCmd(),
		newArtistsListCmd(),
		newArtistsFilterCmd(),
	)

	return cmd
}

func newArtistsFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <username>...",
		Short: "Toggle artists in the favorites list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			results := make(map[string]bool, len(args))
			for _, username := range urlarg.ExtractUsernames(args) {
				added, err := app.Prefs.ToggleFavorite(username)
				if err != nil {
					return err
				}
				results[username] = added
			}

			return app.OK(results, output.WithSummary(toggleSummary(results, "favorite")))
		},
	}
}

func newArtistsBlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "block <username>...",
		Short: "Toggle artists in the blocked list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			results := make(map[string]bool, len(args))
			for _, username := range urlarg.ExtractUsernames(args) {
				added, err := app.Prefs.ToggleBlocked(username)
				if err != nil {
					return err
				}
				results[username] = added
			}

			return app.OK(results, output.WithSummary(toggleSummary(results, "blocked")))
		},
	}
}

// toggleSummary describes a batch of toggles, e.g. "alice added to
// favorites" or "2 added, 1 removed (blocked)".
func toggleSummary(results map[string]bool, list string) string {
	added, removed := 0, 0
	var last string
	for username, on := range results {
		last = username
		if on {
			added++
		} else {
			removed++
		}
	}
	if len(results) == 1 {
		if added == 1 {
			return fmt.Sprintf("%s added to %s list", last, list)
		}
		return fmt.Sprintf("%s removed from %s list", last, list)
	}
	return fmt.Sprintf("%d added, %d removed (%s)", added, removed, list)
}

func newArtistsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show favorite and blocked artists",
		RunE:  runArtistsList,
	}
}

func runArtistsList(cmd *cobra.Command, args []string) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}

	p, err := app.Prefs.Load()
	if err != nil {
		return err
	}

	return app.OK(p, output.WithSummary(fmt.Sprintf(
		"%d favorite, %d blocked", len(p.FavoriteArtists), len(p.BlockedArtists))))
}

func newArtistsFilterCmd() *cobra.Command {
	var favoritesOnly, safeMode string

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Switch the listing filters",
		Long: `Switch the listing filters. --favorites-only restricts listings to
favorite artists; --safe-mode hides mature content regardless of the
API's mature flag.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if favoritesOnly != "" {
				on, err := parseOnOff(favoritesOnly)
				if err != nil {
					return err
				}
				if err := app.Prefs.SetFavoritesOnly(on); err != nil {
					return err
				}
			}
			if safeMode != "" {
				on, err := parseOnOff(safeMode)
				if err != nil {
					return err
				}
				if err := app.Prefs.SetSafeMode(on); err != nil {
					return err
				}
			}

			p, err := app.Prefs.Load()
			if err != nil {
				return err
			}
			return app.OK(map[string]bool{
				"favorites_only": p.FavoritesOnly,
				"safe_mode":      p.SafeMode,
			}, output.WithSummary(fmt.Sprintf(
				"favorites-only %s, safe-mode %s", onOff(p.FavoritesOnly), onOff(p.SafeMode))))
		},
	}

	cmd.Flags().StringVar(&favoritesOnly, "favorites-only", "", "Restrict listings to favorite artists (on|off)")
	cmd.Flags().StringVar(&safeMode, "safe-mode", "", "Hide mature content (on|off)")

	return cmd
}

func parseOnOff(v string) (bool, error) {
	switch v {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, output.ErrUsage(fmt.Sprintf("invalid value %q: use on or off", v))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
