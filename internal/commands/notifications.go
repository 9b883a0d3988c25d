package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/page"
	"github.com/scottbw/dvnt/internal/presenter"
)

// feedbackTypes are the values the feedback endpoint accepts.
var feedbackTypes = map[string]bool{
	"comments":    true,
	"replies":     true,
	"activity":    true,
	"collections": true,
}

// NewNotificationsCmd creates the notifications command group.
func NewNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Show notifications",
		Long: `Show notifications. The default lists feedback and mentions merged
newest-first; subcommands give access to the individual streams.`,
		RunE: runNotificationsAll,
	}

	cmd.PersistentFlags().IntP("limit", "n", 50, "Maximum number of notifications")

	cmd.AddCommand(
		newNotificationsFeedCmd(),
		newNotificationsFeedbackCmd(),
		newNotificationsMentionsCmd(),
	)

	return cmd
}

func runNotificationsAll(cmd *cobra.Command, args []string) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	msgs, err := app.Service.Notifications(cmd.Context(), "", limit)
	if err != nil {
		return err
	}

	return app.OK(msgs, output.WithSummary(notificationSummary(msgs)))
}

func newNotificationsFeedCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the watch feed",
		Long:  "Show the watch feed: new deviations and journals from watched artists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			limit, _ := cmd.Flags().GetInt("limit")
			msgs, err := collectMessages(cmd, app.Service.FeedSource(), limit, all)
			if err != nil {
				return err
			}

			return app.OK(msgs, output.WithSummary(notificationSummary(msgs)))
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Fetch all pages")

	return cmd
}

func newNotificationsFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback [type]",
		Short: "Show feedback notifications",
		Long:  "Show feedback notifications, optionally filtered by type: comments, replies, activity, collections.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			feedbackType := ""
			if len(args) > 0 {
				feedbackType = args[0]
				if !feedbackTypes[feedbackType] {
					return output.ErrUsageHint(
						fmt.Sprintf("Unknown feedback type %q", feedbackType),
						"Valid types: comments, replies, activity, collections")
				}
			}

			limit, _ := cmd.Flags().GetInt("limit")
			msgs, err := collectMessages(cmd, app.Service.FeedbackSource(feedbackType), limit, false)
			if err != nil {
				return err
			}

			return app.OK(msgs, output.WithSummary(notificationSummary(msgs)))
		},
	}

	return cmd
}

func newNotificationsMentionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mentions",
		Short: "Show mention notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			limit, _ := cmd.Flags().GetInt("limit")
			msgs, err := collectMessages(cmd, app.Service.MentionsSource(), limit, false)
			if err != nil {
				return err
			}

			return app.OK(msgs, output.WithSummary(notificationSummary(msgs)))
		},
	}
}

func collectMessages(cmd *cobra.Command, src *page.Source[models.Message], limit int, all bool) ([]models.Message, error) {
	if all {
		limit = 0
	}
	if all || limit > 0 {
		return src.FetchAll(cmd.Context(), limit)
	}
	return src.FetchNext(cmd.Context())
}

func notificationSummary(msgs []models.Message) string {
	n := len(msgs)
	s := fmt.Sprintf("%d %s", n, plural(n, "notification"))
	if n > 0 {
		if t := msgs[0].Time(); !t.IsZero() {
			s += ", newest " + presenter.RelativeTime(t, time.Now())
		}
	}
	return s
}
