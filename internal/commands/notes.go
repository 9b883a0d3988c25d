package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/richtext"
	"github.com/scottbw/dvnt/internal/tui"
)

// NewNotesCmd creates the notes command group.
func NewNotesCmd() *cobra.Command {
	var flags listFlags
	var folder string

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage notes",
		Long:  "List, read, send, and organize notes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			src := app.Service.NotesSource(folder)
			notes, err := collect(cmd.Context(), src, flags)
			if err != nil {
				return err
			}

			return app.OK(notes, output.WithSummary(
				fmt.Sprintf("%d %s", len(notes), plural(len(notes), "note"))))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Notes folder ID")

	cmd.AddCommand(
		newNotesShowCmd(),
		newNotesSendCmd(),
		newNotesDeleteCmd(),
		newNotesMoveCmd(),
		newNotesFoldersCmd(),
	)

	return cmd
}

func newNotesShowCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <note-id>",
		Short: "Read a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			note, err := app.Service.Note(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			// Note bodies come back as HTML. For human consumption they
			// are converted; machine formats get the raw record.
			if app.IsInteractive() && !raw {
				from := ""
				if note.User != nil {
					from = " from " + note.User.Username
				}
				fmt.Println(richtext.RenderHTML(note.Body, 80))
				return app.OK(note, output.WithSummary(note.Subject+from))
			}

			return app.OK(note, output.WithSummary(note.Subject))
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Skip terminal rendering of the body")

	return cmd
}

func newNotesSendCmd() *cobra.Command {
	var to, subject, body string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a note",
		Long: `Send a note to one or more users. Recipients are comma-separated.
Without --to/--body, an interactive composer opens.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			recipients := splitUsernames(to)

			if len(recipients) == 0 || strings.TrimSpace(body) == "" {
				if !app.IsInteractive() {
					return output.ErrUsageHint("Recipient and body are required",
						"Use --to <username> and --body <text>, or run interactively")
				}
				draft, err := tui.ComposeNote(tui.NoteDraft{
					To:      recipients,
					Subject: subject,
					Body:    body,
				})
				if err != nil {
					return err
				}
				recipients, subject, body = draft.To, draft.Subject, draft.Body
			}

			// The API expects HTML bodies; plain text and Markdown both
			// pass through the converter.
			sent, err := app.Service.SendNote(cmd.Context(), recipients,
				subject, richtext.MarkdownToHTML(body))
			if err != nil {
				return err
			}

			return app.OK(sent, output.WithSummary(
				fmt.Sprintf("Note sent to %s", strings.Join(recipients, ", "))))
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipients (comma-separated usernames)")
	cmd.Flags().StringVar(&subject, "subject", "", "Note subject")
	cmd.Flags().StringVar(&body, "body", "", "Note body (Markdown)")

	return cmd
}

func newNotesDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <note-id>...",
		Short: "Delete notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if !yes && app.IsInteractive() {
				ok, err := tui.ConfirmDangerous(
					fmt.Sprintf("Delete %d %s?", len(args), plural(len(args), "note")))
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			if err := app.Service.DeleteNotes(cmd.Context(), args); err != nil {
				return err
			}

			return app.OK(map[string]any{
				"deleted": args,
			}, output.WithSummary(fmt.Sprintf("Deleted %d %s", len(args), plural(len(args), "note"))))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newNotesMoveCmd() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "move <note-id>...",
		Short: "Move notes to a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if folder == "" {
				return output.ErrUsage("--folder is required")
			}

			if err := app.Service.MoveNotes(cmd.Context(), args, folder); err != nil {
				return err
			}

			return app.OK(map[string]any{
				"moved":  args,
				"folder": folder,
			}, output.WithSummary(fmt.Sprintf("Moved %d %s", len(args), plural(len(args), "note"))))
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Destination folder ID")

	return cmd
}

func newNotesFoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List notes folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			folders, err := app.Service.NoteFolders(cmd.Context())
			if err != nil {
				return err
			}

			return app.OK(folders, output.WithSummary(
				fmt.Sprintf("%d %s", len(folders), plural(len(folders), "folder"))))
		},
	}

	cmd.AddCommand(
		newNotesFoldersCreateCmd(),
		newNotesFoldersDeleteCmd(),
		newNotesFoldersRenameCmd(),
	)

	return cmd
}

func newNotesFoldersCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a notes folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			folder, err := app.Service.CreateNoteFolder(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.OK(folder, output.WithSummary("Created folder "+folder.DisplayName()))
		},
	}
}

func newNotesFoldersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <folder-id>",
		Short: "Delete a notes folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if err := app.Service.DeleteNoteFolder(cmd.Context(), args[0]); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"deleted": args[0],
			}, output.WithSummary("Folder deleted"))
		},
	}
}

func newNotesFoldersRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder-id> <name>",
		Short: "Rename a notes folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if err := app.Service.RenameNoteFolder(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"folder": args[0],
				"name":   args[1],
			}, output.WithSummary("Folder renamed"))
		},
	}
}
