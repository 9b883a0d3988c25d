package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/page"
	"github.com/scottbw/dvnt/internal/urlarg"
)

// NewGalleryCmd creates the gallery command group.
func NewGalleryCmd() *cobra.Command {
	var flags listFlags
	var folder string
	var interactive bool
	var setDefault bool

	cmd := &cobra.Command{
		Use:   "gallery [username]",
		Short: "Browse a user's gallery",
		Long: `List deviations in a user's gallery. Without a username, lists
the signed-in user's own gallery. Use --folder to list a single
gallery folder; --set-default saves it as the folder your own gallery
opens with, and --set-default without --folder clears that again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			username := ""
			if len(args) > 0 {
				username = urlarg.ExtractUsername(args[0])
			}

			if setDefault {
				if err := app.Prefs.SetDefaultGallery(folder); err != nil {
					return err
				}
			}
			if folder == "" && username == "" {
				// Own gallery opens with the saved default folder.
				if p, err := app.Prefs.Load(); err == nil {
					folder = p.DefaultGallery
				}
			}

			var src *page.Source[models.Deviation]
			if folder != "" {
				src = app.Service.GalleryFolderSource(username, folder)
			} else {
				src = app.Service.GallerySource(username)
			}

			if interactive && app.IsInteractive() {
				title := "Gallery"
				if username != "" {
					title = username + "'s gallery"
				}
				return browseInteractive(cmd, app, title, src)
			}

			devs, err := collect(cmd.Context(), src, flags)
			if err != nil {
				return err
			}

			return app.OK(devs, output.WithSummary(deviationSummary(app, len(devs), "deviation")))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Gallery folder ID")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse interactively")
	cmd.Flags().BoolVar(&setDefault, "set-default", false, "Save --folder as the default gallery folder")

	cmd.AddCommand(newGalleryFoldersCmd())

	return cmd
}

func newGalleryFoldersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "folders [username]",
		Short: "List gallery folders",
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

			folders, err := app.Service.GalleryFolders(cmd.Context(), username)
			if err != nil {
				return err
			}

			return app.OK(folders, output.WithSummary(
				fmt.Sprintf("%d %s", len(folders), plural(len(folders), "folder"))))
		},
	}
}
