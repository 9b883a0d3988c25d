package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/auth"
	"github.com/scottbw/dvnt/internal/output"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  "Manage DeviantArt authentication including login, logout, and status.",
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
		newAuthRefreshCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with DeviantArt",
		Long:  "Start the OAuth flow to authenticate with DeviantArt.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			fmt.Println("Starting DeviantArt authentication...")
			if err := app.Auth.Login(cmd.Context(), auth.LoginOptions{
				NoBrowser: noBrowser || app.Flags.NoBrowser,
			}); err != nil {
				return err
			}

			fmt.Println("\nAuthentication successful!")

			// Best effort: record who we logged in as.
			if user, err := app.Service.Whoami(cmd.Context()); err == nil {
				if err := app.Auth.SetUsername(user.Username); err == nil {
					fmt.Printf("Logged in as: %s\n", user.Username)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Don't open browser automatically")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long:  "Revoke the refresh token (best effort) and remove stored credentials.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if err := app.Auth.Logout(cmd.Context()); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"status": "logged_out",
			}, output.WithSummary("Successfully logged out"))
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long:  "Display the current authentication status and token information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			store := app.Auth.Store()
			creds, err := store.Load()
			if err != nil {
				return err
			}

			if creds == nil || creds.AccessToken == "" {
				return app.OK(map[string]any{
					"authenticated": false,
				}, output.WithSummary("Not authenticated"))
			}

			status := map[string]any{
				"authenticated": true,
				"scope":         creds.Scope,
			}
			if creds.Username != "" {
				status["username"] = creds.Username
			}
			if creds.ExpiresAt > 0 {
				expiresIn := time.Until(time.UnixMilli(creds.ExpiresAt))
				status["expires_in"] = expiresIn.Round(time.Second).String()
				status["expired"] = expiresIn < 0
			}

			summary := "Authenticated"
			if creds.Username != "" {
				summary += " as " + creds.Username
			}
			return app.OK(status, output.WithSummary(summary))
		},
	}
}

func newAuthRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token",
		Long:  "Force a refresh of the OAuth access token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if err := app.Auth.Refresh(cmd.Context()); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"status": "refreshed",
			}, output.WithSummary("Token refreshed successfully"))
		},
	}
}
