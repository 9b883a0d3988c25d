// Package cli assembles the root command and global flag handling.
package cli

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scottbw/dvnt/internal/appctx"
	"github.com/scottbw/dvnt/internal/commands"
	"github.com/scottbw/dvnt/internal/completion"
	"github.com/scottbw/dvnt/internal/config"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/version"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags appctx.GlobalFlags
	var baseURL, clientID, format string
	var pageSize int
	var mature bool

	cmd := &cobra.Command{
		Use:           "dvnt",
		Short:         "Command-line interface for DeviantArt",
		Long:          "dvnt is a CLI tool for browsing DeviantArt, managing favourites, notes, and watches.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			overrides := config.FlagOverrides{
				BaseURL:  baseURL,
				ClientID: clientID,
				PageSize: pageSize,
				Format:   format,
			}
			if cmd.Flags().Changed("mature") {
				overrides.Mature = &mature
			}

			cfg, err := config.Load(overrides)
			if err != nil {
				return err
			}

			app := appctx.NewApp(cfg)
			app.Flags = flags
			app.ApplyFlags()

			cmd.SetContext(appctx.WithApp(cmd.Context(), app))
			return nil
		},
	}

	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)

	// Output format flags
	cmd.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	cmd.PersistentFlags().BoolVar(&flags.YAML, "yaml", false, "Output as YAML")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	cmd.PersistentFlags().BoolVar(&flags.Styled, "styled", false, "Force styled output (ANSI colors)")
	cmd.PersistentFlags().BoolVar(&flags.IDsOnly, "ids-only", false, "Output only IDs")
	cmd.PersistentFlags().BoolVar(&flags.Count, "count", false, "Output only count")

	// Connection flags
	cmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL")
	cmd.PersistentFlags().StringVar(&clientID, "client-id", "", "OAuth client ID")
	_ = cmd.PersistentFlags().MarkHidden("base-url")

	// Behavior flags
	cmd.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (request traces)")
	cmd.PersistentFlags().BoolVar(&flags.NoBrowser, "no-browser", false, "Print the login URL instead of opening a browser")
	cmd.PersistentFlags().BoolVar(&mature, "mature", false, "Include mature content in listings")
	cmd.PersistentFlags().IntVar(&pageSize, "page-size", 0, "Results per API page (1-120)")
	cmd.PersistentFlags().StringVar(&format, "format", "", "Default output format (auto, json, yaml, styled, quiet)")

	_ = cmd.RegisterFlagCompletionFunc("format", completion.FormatCompletion())

	return cmd
}

// Execute runs the root command.
func Execute() {
	cmd := NewRootCmd()

	cmd.AddCommand(commands.NewAuthCmd())
	cmd.AddCommand(commands.NewBrowseCmd())
	cmd.AddCommand(commands.NewGalleryCmd())
	cmd.AddCommand(commands.NewCollectionsCmd())
	cmd.AddCommand(commands.NewDeviationCmd())
	cmd.AddCommand(commands.NewCommentsCmd())
	cmd.AddCommand(commands.NewNotificationsCmd())
	cmd.AddCommand(commands.NewNotesCmd())
	cmd.AddCommand(commands.NewProfileCmd())
	cmd.AddCommand(commands.NewArtistsCmd())
	cmd.AddCommand(commands.NewConfigCmd())
	cmd.AddCommand(commands.NewThemeCmd())
	cmd.AddCommand(commands.NewVersionCmd())

	// ExecuteC gives back the executed command, whose context holds the app.
	executedCmd, err := cmd.ExecuteC()
	if err != nil {
		err = transformCobraError(err)
		apiErr := output.AsError(err)

		if app := appctx.FromContext(executedCmd.Context()); app != nil {
			_ = app.Err(err)
			os.Exit(apiErr.ExitCode())
		}

		// App not available, e.g. the failure happened during setup.
		writer := output.New(output.Options{
			Format: fallbackFormat(cmd.PersistentFlags()),
			Writer: os.Stdout,
		})
		_ = writer.Err(err)

		os.Exit(apiErr.ExitCode())
	}
}

// fallbackFormat picks an output format from the raw persistent flags,
// for errors raised before the app exists.
func fallbackFormat(pf *pflag.FlagSet) output.Format {
	boolFlag := func(name string) bool {
		v, _ := pf.GetBool(name)
		return v
	}
	switch {
	case boolFlag("quiet"):
		return output.FormatQuiet
	case boolFlag("ids-only"):
		return output.FormatIDs
	case boolFlag("count"):
		return output.FormatCount
	case boolFlag("styled"):
		return output.FormatStyled
	case boolFlag("yaml"):
		return output.FormatYAML
	case boolFlag("json"):
		return output.FormatJSON
	}
	return output.FormatAuto
}

var shorthandFlagRe = regexp.MustCompile(`unknown shorthand flag: '.' in (-\w)`)

// transformCobraError rewrites cobra's flag and argument errors into the
// usage-error taxonomy so they exit with the right code.
func transformCobraError(err error) error {
	msg := err.Error()

	if strings.HasPrefix(msg, "flag needs an argument: ") {
		flag := strings.TrimPrefix(msg, "flag needs an argument: ")
		return output.ErrUsage(flag + " requires a value")
	}

	if strings.HasPrefix(msg, "unknown flag: ") {
		flag := strings.TrimPrefix(msg, "unknown flag: ")
		return output.ErrUsage("Unknown option: " + flag)
	}

	if strings.HasPrefix(msg, "unknown shorthand flag: ") {
		if matches := shorthandFlagRe.FindStringSubmatch(msg); len(matches) > 1 {
			return output.ErrUsage("Unknown option: " + matches[1])
		}
	}

	if strings.Contains(msg, "invalid argument") {
		return output.ErrUsage(msg)
	}

	if strings.Contains(msg, "arg(s), received") || strings.Contains(msg, "requires at least") {
		return output.ErrUsage(msg)
	}

	if strings.HasPrefix(msg, "unknown command ") {
		return output.ErrUsage(msg)
	}

	return err
}
