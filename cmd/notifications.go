package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/taskhub/taskhub-cli/internal/logging"
	"github.com/taskhub/taskhub-cli/internal/model"
)

// NewNotificationsCmd creates the notifications command group for
// scripting without the interactive UI.
func NewNotificationsCmd() *cobra.Command {
	notifCmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "List and manage notifications",
	}

	notifCmd.AddCommand(
		newNotifListCmd(),
		newNotifCountCmd(),
		newNotifReadCmd(),
		newNotifReadAllCmd(),
		newNotifDeleteCmd(),
		newNotifDeleteAllCmd(),
	)

	return notifCmd
}

func newNotifListCmd() *cobra.Command {
	var filterName string
	var taskID string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()
			if err := e.requireSession(); err != nil {
				return err
			}

			filter, err := parseNotificationFilter(filterName, taskID)
			if err != nil {
				return err
			}

			items, _, err := e.client.ListNotifications(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("listing notifications: %w", err)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notifications.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, n := range items {
				marker := " "
				if !n.IsRead {
					marker = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					marker, n.ID, n.Type, n.CreatedAt.Format("2006-01-02 15:04"), n.Title)
			}
			return w.Flush()
		},
	}

	listCmd.Flags().StringVarP(&filterName, "filter", "f", "all",
		"all, unread, read, due-soon, overdue, assigned, invite, or general")
	listCmd.Flags().StringVar(&taskID, "task", "", "only notifications for this task")
	return listCmd
}

func newNotifCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the unread notification count",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()
			if err := e.requireSession(); err != nil {
				return err
			}

			count, err := e.client.UnreadCount(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching unread count: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
}

func newNotifReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()
			if err := e.requireSession(); err != nil {
				return err
			}

			if err := e.client.MarkNotificationRead(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("marking notification read: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Marked as read.")
			return nil
		},
	}
}

func newNotifReadAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()
			if err := e.requireSession(); err != nil {
				return err
			}

			if err := e.client.MarkAllNotificationsRead(cmd.Context()); err != nil {
				return fmt.Errorf("marking all read: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All notifications marked as read.")
			return nil
		},
	}
}

func newNotifDeleteCmd() *cobra.Command {
	var yes bool

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()
			if err := e.requireSession(); err != nil {
				return err
			}

			if !yes {
				ok, err := confirm(fmt.Sprintf("Delete notification %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			if err := e.client.DeleteNotification(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
			return nil
		},
	}

	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return deleteCmd
}

func newNotifDeleteAllCmd() *cobra.Command {
	var yes bool

	deleteAllCmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer logging.Shutdown()
			if err := e.requireSession(); err != nil {
				return err
			}

			if !yes {
				ok, err := confirm("Delete ALL notifications?")
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			if err := e.client.DeleteAllNotifications(cmd.Context()); err != nil {
				return fmt.Errorf("deleting all notifications: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All notifications deleted.")
			return nil
		},
	}

	deleteAllCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return deleteAllCmd
}

// parseNotificationFilter maps the CLI flags onto a list filter. A task
// ID takes precedence over the named filter.
func parseNotificationFilter(name, taskID string) (model.NotificationFilter, error) {
	if taskID != "" {
		return model.FilterByTask(taskID), nil
	}

	switch name {
	case "", "all":
		return model.FilterAll, nil
	case "unread":
		return model.FilterUnread, nil
	case "read":
		return model.FilterRead, nil
	case "due-soon":
		return model.FilterByType(model.NotificationTaskDueSoon), nil
	case "overdue":
		return model.FilterByType(model.NotificationTaskOverdue), nil
	case "assigned":
		return model.FilterByType(model.NotificationTaskAssigned), nil
	case "invite":
		return model.FilterByType(model.NotificationWorkspaceInvitation), nil
	case "general":
		return model.FilterByType(model.NotificationGeneral), nil
	default:
		return model.NotificationFilter{}, fmt.Errorf("unknown filter %q", name)
	}
}

// confirm blocks on an interactive yes/no prompt.
func confirm(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Value(&ok),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
