// Package cmd wires the taskhub command tree. The bare command launches
// the TUI; subcommands drive the session and notification cores headlessly.
package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/taskhub/taskhub-cli/internal/api"
	"github.com/taskhub/taskhub-cli/internal/app"
	"github.com/taskhub/taskhub-cli/internal/credential"
	"github.com/taskhub/taskhub-cli/internal/logging"
	"github.com/taskhub/taskhub-cli/internal/model"
	"github.com/taskhub/taskhub-cli/internal/notify"
	"github.com/taskhub/taskhub-cli/internal/session"
)

var configPath string

// env bundles the wired-up client stack shared by every command.
type env struct {
	cfg     *model.AppConfig
	creds   *credential.Store
	client  *api.Client
	session *session.Manager
}

// newEnv loads configuration, initializes logging, opens the credential
// store, and restores the session from it without any network call.
func newEnv() (*env, error) {
	path := configPath
	if path == "" {
		path = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := logging.Init(cfg.Logging); err != nil {
		return nil, err
	}

	creds, err := credential.Open()
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.Server.BaseURL, creds)
	sess := session.NewManager(creds, client)
	sess.Initialize()

	return &env{cfg: cfg, creds: creds, client: client, session: sess}, nil
}

// requireSession fails fast for commands that only make sense signed in.
func (e *env) requireSession() error {
	if !e.session.IsAuthenticated() {
		return fmt.Errorf("not signed in; run `taskhub login` first")
	}
	return nil
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskhub",
		Short: "Terminal client for the TaskHub task-management service",
		Long: `taskhub is a terminal client for the TaskHub service.

Run without arguments to open the interactive UI. Subcommands cover
session management and notifications for scripting.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()

			interval := notify.DefaultInterval
			if s := e.cfg.Notifications.PollIntervalSec; s > 0 {
				interval = secondsToDuration(s)
			}
			poller := notify.NewPoller(e.client, e.session, interval)
			ctrl := notify.NewController(e.client, poller)

			program := tea.NewProgram(
				app.New(e.client, e.session, poller, ctrl),
				tea.WithAltScreen(),
			)
			_, err = program.Run()
			poller.Stop()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "",
		"path to the config file (default ~/.config/taskhub/config.yaml)",
	)

	rootCmd.AddCommand(
		NewLoginCmd(),
		NewRegisterCmd(),
		NewLogoutCmd(),
		NewWhoamiCmd(),
		NewRefreshCmd(),
		NewNotificationsCmd(),
	)

	return rootCmd
}

// secondsToDuration converts a config interval to a time.Duration.
func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
