package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/page"
	"github.com/scottbw/dvnt/internal/urlarg"
)

// NewCollectionsCmd creates the collections command group.
func NewCollectionsCmd() *cobra.Command {
	var flags listFlags
	var folder string

	cmd := &cobra.Command{
		Use:   "collections [username]",
		Short: "Browse favourite collections",
		Long: `List deviations in a user's favourite collections. Without a
username, lists the signed-in user's own collections.`,
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

			var src *page.Source[models.Deviation]
			if folder != "" {
				src = app.Service.CollectionFolderSource(username, folder)
			} else {
				src = app.Service.CollectionsSource(username)
			}

			devs, err := collect(cmd.Context(), src, flags)
			if err != nil {
				return err
			}

			return app.OK(devs, output.WithSummary(deviationSummary(app, len(devs), "deviation")))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Collection folder ID")

	cmd.AddCommand(
		newCollectionsFoldersCmd(),
		newFaveCmd(),
		newUnfaveCmd(),
		newCollectionsCreateFolderCmd(),
	)

	return cmd
}

func newCollectionsFoldersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "folders [username]",
		Short: "List collection folders",
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

			folders, err := app.Service.CollectionFolders(cmd.Context(), username)
			if err != nil {
				return err
			}

			return app.OK(folders, output.WithSummary(
				fmt.Sprintf("%d %s", len(folders), plural(len(folders), "folder"))))
		},
	}
}

func newFaveCmd() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "fave <deviation-id>",
		Short: "Add a deviation to your favourites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.Service.Fave(cmd.Context(), urlarg.ExtractDeviationID(args[0]), folder)
			if err != nil {
				return err
			}

			return app.OK(result, output.WithSummary(
				fmt.Sprintf("Added to favourites (%d total)", result.Favourites)))
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Collection folder ID")

	return cmd
}

func newUnfaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unfave <deviation-id>",
		Short: "Remove a deviation from your favourites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.Service.Unfave(cmd.Context(), urlarg.ExtractDeviationID(args[0]))
			if err != nil {
				return err
			}

			return app.OK(result, output.WithSummary(
				fmt.Sprintf("Removed from favourites (%d total)", result.Favourites)))
		},
	}
}

func newCollectionsCreateFolderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-folder <name>",
		Short: "Create a collection folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			folder, err := app.Service.CreateCollectionFolder(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.OK(folder, output.WithSummary("Created folder "+folder.DisplayName()))
		},
	}
}
