package cmd

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taskhub/taskhub-cli/internal/api"
	"github.com/taskhub/taskhub-cli/internal/logging"
)

// NewLoginCmd creates the login command.
func NewLoginCmd() *cobra.Command {
	var username string
	var password string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the TaskHub service",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()

			if username == "" {
				return fmt.Errorf("--username is required")
			}
			if password == "" {
				password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			data, err := e.session.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n",
				data.User.Username, data.User.Role)
			return nil
		},
	}

	loginCmd.Flags().StringVarP(&username, "username", "u", "", "username or email")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return loginCmd
}

// NewRegisterCmd creates the register command.
func NewRegisterCmd() *cobra.Command {
	var req api.RegisterRequest

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create a TaskHub account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()

			if req.Username == "" || req.Email == "" {
				return fmt.Errorf("--username and --email are required")
			}
			if req.Password == "" {
				req.Password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			if err := e.client.Register(cmd.Context(), req); err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Account created; run `taskhub login` to sign in.")
			return nil
		},
	}

	registerCmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	registerCmd.Flags().StringVarP(&req.Email, "email", "e", "", "email address")
	registerCmd.Flags().StringVar(&req.FullName, "full-name", "", "display name")
	registerCmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
	return registerCmd
}

// NewLogoutCmd creates the logout command.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()

			// Clears locally even when the server is unreachable.
			e.session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command, which reports the cached
// profile without a network call.
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user from the cached profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()

			snap := e.session.Snapshot()
			if !snap.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			if snap.User == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed in (no cached profile).")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n",
				snap.User.Username, snap.User.Email, snap.User.Role)
			return nil
		},
	}
}

// NewRefreshCmd creates the refresh command, which exchanges the stored
// refresh token for a new access token.
func NewRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()

			if err := e.session.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("refresh failed (signed out): %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Access token refreshed.")
			return nil
		},
	}
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(raw), nil
}
