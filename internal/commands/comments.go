package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/tui"
	"github.com/scottbw/dvnt/internal/urlarg"
)

// NewCommentsCmd creates the comments command group.
func NewCommentsCmd() *cobra.Command {
	var flags listFlags
	var depth int

	cmd := &cobra.Command{
		Use:   "comments <deviation-id>",
		Short: "List comments on a deviation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			src := app.Service.CommentsSource(urlarg.ExtractDeviationID(args[0]), depth)
			comments, err := collect(cmd.Context(), src, flags)
			if err != nil {
				return err
			}

			return app.OK(comments, output.WithSummary(
				deviationSummary(app, len(comments), "comment")))
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum reply depth to include")

	cmd.AddCommand(newCommentPostCmd())

	return cmd
}

func newCommentPostCmd() *cobra.Command {
	var replyTo string

	cmd := &cobra.Command{
		Use:   "post <deviation-id> [body]",
		Short: "Post a comment on a deviation",
		Long: `Post a comment. The body can be given as an argument; without one,
an editor prompt opens when the terminal is interactive.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			var body string
			if len(args) > 1 {
				body = args[1]
			} else if app.IsInteractive() {
				body, err = tui.ComposeComment("Comment")
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(body) == "" {
				return output.ErrUsage("The comment body cannot be empty")
			}

			comment, err := app.Service.PostComment(cmd.Context(), urlarg.ExtractDeviationID(args[0]), body, replyTo)
			if err != nil {
				return err
			}

			return app.OK(comment, output.WithSummary("Comment posted"))
		},
	}

	cmd.Flags().StringVar(&replyTo, "reply-to", "", "Comment ID to reply to")

	return cmd
}
