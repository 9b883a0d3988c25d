package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/config"
	"github.com/scottbw/dvnt/internal/output"
)

// NewThemeCmd creates the theme command. Themes are flat colors.toml
// files under <configdir>/theme; the saved name selects one of them
// for styled output.
func NewThemeCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "theme [name]",
		Short: "Show or set the color theme",
		Long: `Show or set the color theme for styled output. Themes are
colors.toml files in the theme directory under the config dir; a
name refers to <name>.toml there. With no argument, shows the saved
theme. Use --clear to return to the default.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if clear && len(args) > 0 {
				return output.ErrUsage("Use either a theme name or --clear, not both")
			}

			if clear {
				if err := app.Prefs.SetTheme(""); err != nil {
					return err
				}
				return app.OK(map[string]string{"theme": ""},
					output.WithSummary("theme cleared"))
			}

			if len(args) > 0 {
				name := args[0]
				path := filepath.Join(config.GlobalConfigDir(), "theme", name+".toml")
				if _, err := os.Stat(path); err != nil {
					return output.ErrUsageHint(
						"unknown theme "+name,
						"Expected a theme file at "+path)
				}
				if err := app.Prefs.SetTheme(name); err != nil {
					return err
				}
				return app.OK(map[string]string{"theme": name},
					output.WithSummary("theme set to "+name))
			}

			p, err := app.Prefs.Load()
			if err != nil {
				return err
			}
			name := p.Theme
			summary := "theme " + name
			if name == "" {
				summary = "default theme"
			}
			return app.OK(map[string]string{"theme": name}, output.WithSummary(summary))
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Return to the default theme")

	return cmd
}
