package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/taskhub/taskhub-cli/internal/model"
)

// UnreadCount returns the number of unread notifications.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	env, err := c.Get(ctx, "/notifications/unread/count", true)
	if err != nil {
		return 0, err
	}
	return env.Count, nil
}

// ListNotifications returns the notifications matching the filter along
// with the server-reported total for that filter.
func (c *Client) ListNotifications(
	ctx context.Context,
	filter model.NotificationFilter,
) ([]model.Notification, int, error) {
	env, err := c.Get(ctx, notificationsPath(filter), true)
	if err != nil {
		return nil, 0, err
	}

	var notifications []model.Notification
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &notifications); err != nil {
			return nil, 0, fmt.Errorf("decoding notification list: %w", err)
		}
	}
	return notifications, env.Count, nil
}

// MarkNotificationRead marks a single notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := c.Put(ctx, "/notifications/"+url.PathEscape(id)+"/mark-read", nil, true)
	return err
}

// MarkAllNotificationsRead marks every notification as read in one call.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := c.Put(ctx, "/notifications/mark-all-read", nil, true)
	return err
}

// DeleteNotification removes a single notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, "/notifications/"+url.PathEscape(id), true)
	return err
}

// DeleteAllNotifications removes every notification in one call.
func (c *Client) DeleteAllNotifications(ctx context.Context) error {
	_, err := c.Delete(ctx, "/notifications", true)
	return err
}

// notificationsPath maps a filter onto the corresponding list endpoint.
func notificationsPath(filter model.NotificationFilter) string {
	switch filter.Kind {
	case "unread":
		return "/notifications/unread"
	case "read":
		return "/notifications/read"
	case "type":
		return "/notifications/type/" + url.PathEscape(string(filter.Type))
	case "task":
		return "/notifications/task/" + url.PathEscape(filter.TaskID)
	default:
		return "/notifications"
	}
}
