package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/urlarg"
)

// NewProfileCmd creates the profile command group.
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile [username]",
		Short: "Show user profiles",
		Long: `Show a user's profile. Without a username, shows the signed-in
user's own profile.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runProfileShow,
	}

	cmd.AddCommand(
		newWatchCmd(),
		newUnwatchCmd(),
		newWatchingCmd(),
		newWatchersCmd(),
		newFriendsCmd(),
		newUserSearchCmd(),
	)

	return cmd
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}

	username := ""
	if len(args) > 0 {
		username = urlarg.ExtractUsername(args[0])
	} else {
		me, err := app.Service.Whoami(cmd.Context())
		if err != nil {
			return err
		}
		username = me.Username
	}

	profile, err := app.Service.Profile(cmd.Context(), username)
	if err != nil {
		return err
	}

	// The profile payload carries no watcher counts. The API used to
	// expose them; now the public profile page is the only place they
	// appear, so fill them in by scraping, best effort.
	watchers, watching, err := app.Service.WatcherCounts(cmd.Context(), username)
	if err != nil {
		if watchers, watching, err = app.Scraper.ProfileCounts(cmd.Context(), username); err != nil {
			watchers, watching = 0, 0
		}
	}
	profile.Watchers = watchers
	profile.Watching = watching

	summary := username
	if watchers > 0 {
		summary += fmt.Sprintf(" (%s watchers)", app.Locale.FormatCount(watchers))
	}
	return app.OK(profile, output.WithSummary(summary))
}

func newWatchCmd() *cobra.Command {
	var deviations, journals, critiques, activity, collections, scraps, forum bool

	cmd := &cobra.Command{
		Use:   "watch <username>",
		Short: "Watch a user",
		Long: `Watch a user. By default deviations and journals are subscribed;
flags select individual streams.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			watch := models.Watch{
				Friend:       true,
				Deviations:   deviations,
				Journals:     journals,
				Critiques:    critiques,
				Activity:     activity,
				Collections:  collections,
				Scraps:       scraps,
				ForumThreads: forum,
			}
			// No stream flags at all means the default subscription.
			if !deviations && !journals && !critiques && !activity && !collections && !scraps && !forum {
				watch.Deviations = true
				watch.Journals = true
			}

			username := urlarg.ExtractUsername(args[0])
			if err := app.Service.Watch(cmd.Context(), username, watch); err != nil {
				return err
			}

			return app.OK(map[string]any{
				"username": username,
				"watching": true,
			}, output.WithSummary("Now watching "+username))
		},
	}

	cmd.Flags().BoolVar(&deviations, "deviations", false, "Subscribe to deviations")
	cmd.Flags().BoolVar(&journals, "journals", false, "Subscribe to journals")
	cmd.Flags().BoolVar(&critiques, "critiques", false, "Subscribe to critiques")
	cmd.Flags().BoolVar(&activity, "activity", false, "Subscribe to activity")
	cmd.Flags().BoolVar(&collections, "collections", false, "Subscribe to collections")
	cmd.Flags().BoolVar(&scraps, "scraps", false, "Subscribe to scraps")
	cmd.Flags().BoolVar(&forum, "forum-threads", false, "Subscribe to forum threads")

	return cmd
}

func newUnwatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unwatch <username>",
		Short: "Stop watching a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			username := urlarg.ExtractUsername(args[0])
			if err := app.Service.Unwatch(cmd.Context(), username); err != nil {
				return err
			}

			return app.OK(map[string]any{
				"username": username,
				"watching": false,
			}, output.WithSummary("Stopped watching "+username))
		},
	}
}

func newWatchingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watching <username>",
		Short: "Check whether you watch a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			username := urlarg.ExtractUsername(args[0])
			watching, err := app.Service.IsWatching(cmd.Context(), username)
			if err != nil {
				return err
			}

			summary := "Not watching " + username
			if watching {
				summary = "Watching " + username
			}
			return app.OK(map[string]any{
				"username": username,
				"watching": watching,
			}, output.WithSummary(summary))
		},
	}
}

func newWatchersCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "watchers [username]",
		Short: "List a user's watchers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			username := ""
			if len(args) > 0 {
				username = urlarg.ExtractUsername(args[0])
			}

			watchers, err := collect(cmd.Context(), app.Service.WatchersSource(username), flags)
			if err != nil {
				return err
			}

			return app.OK(watchers, output.WithSummary(
				fmt.Sprintf("%s %s", app.Locale.FormatCount(len(watchers)), plural(len(watchers), "watcher"))))
		},
	}

	flags.register(cmd)

	return cmd
}

func newFriendsCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "friends [username]",
		Short: "List the users someone watches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			username := ""
			if len(args) > 0 {
				username = urlarg.ExtractUsername(args[0])
			}

			friends, err := collect(cmd.Context(), app.Service.FriendsSource(username), flags)
			if err != nil {
				return err
			}

			return app.OK(friends, output.WithSummary(
				fmt.Sprintf("%d %s", len(friends), plural(len(friends), "friend"))))
		},
	}

	flags.register(cmd)

	return cmd
}

func newUserSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search for users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			users, err := app.Service.SearchUsers(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.OK(users, output.WithSummary(
				fmt.Sprintf("%d %s", len(users), plural(len(users), "user"))))
		},
	}
}
