package commands

import (
	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/urlarg"
)

// NewDeviationCmd creates the deviation command.
func NewDeviationCmd() *cobra.Command {
	var withMetadata bool

	cmd := &cobra.Command{
		Use:   "deviation <id>",
		Short: "Show a single deviation",
		Long: `Show a deviation by its UUID. With --metadata, the extended
metadata (description, tags, camera info) is fetched as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			dev, err := app.Service.Deviation(cmd.Context(), urlarg.ExtractDeviationID(args[0]))
			if err != nil {
				return err
			}

			if !withMetadata {
				return app.OK(dev, output.WithSummary(dev.Title))
			}

			meta, err := app.Service.Metadata(cmd.Context(), []string{dev.DeviationID})
			if err != nil {
				return err
			}

			result := map[string]any{"deviation": dev}
			if len(meta) > 0 {
				result["metadata"] = meta[0]
			}
			return app.OK(result, output.WithSummary(dev.Title))
		},
	}

	cmd.Flags().BoolVar(&withMetadata, "metadata", false, "Include extended metadata")

	return cmd
}
