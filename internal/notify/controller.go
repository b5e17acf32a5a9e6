package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskhub/taskhub-cli/internal/api"
	"github.com/taskhub/taskhub-cli/internal/logging"
	"github.com/taskhub/taskhub-cli/internal/model"
)

// countRefresher is the slice of the poller the controller needs: the
// "refresh my count" signal raised after successful mutations.
type countRefresher interface {
	RefreshCount()
}

// Controller owns the client-held notification list for the active
// filter. Fetches replace the list wholesale; mutations are applied
// locally only after the server confirms them, so a failed call never
// presents a false state.
type Controller struct {
	client    *api.Client
	refresher countRefresher
	now       func() time.Time

	mu      sync.Mutex
	items   []model.Notification
	filter  model.NotificationFilter
	pending map[string]bool
}

// NewController creates a list controller that raises the count-refresh
// signal on refresher after each successful mutation.
func NewController(client *api.Client, refresher countRefresher) *Controller {
	return &Controller{
		client:    client,
		refresher: refresher,
		now:       time.Now,
		filter:    model.FilterAll,
		pending:   make(map[string]bool),
	}
}

// Fetch replaces the cached list with the server's result for the given
// filter. There is no incremental merge; a wholesale replace avoids
// reconciling partial views.
func (c *Controller) Fetch(ctx context.Context, filter model.NotificationFilter) error {
	items, _, err := c.client.ListNotifications(ctx, filter)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = filter
	c.items = items
	return nil
}

// Items returns a copy of the cached notification list.
func (c *Controller) Items() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]model.Notification, len(c.items))
	copy(items, c.items)
	return items
}

// ActiveFilter returns the filter the cached list was fetched with.
func (c *Controller) ActiveFilter() model.NotificationFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// IsPending reports whether a mutation for the given id is in flight,
// so the UI can disable only the affected row.
func (c *Controller) IsPending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[id]
}

// MarkAsRead marks one notification read on the server and, only after
// the server confirms, applies the same change to the local entry. On
// failure the local entry is left unchanged.
func (c *Controller) MarkAsRead(ctx context.Context, id string) error {
	if err := c.begin(id); err != nil {
		return err
	}
	defer c.finish(id)

	if err := c.client.MarkNotificationRead(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i, n := range c.items {
		if n.ID == id {
			c.items[i] = n.MarkRead(c.now())
			break
		}
	}
	c.mu.Unlock()

	c.refresher.RefreshCount()
	return nil
}

// Delete removes one notification on the server and drops it from the
// cache on success. The caller is responsible for user confirmation
// before invoking this. Deleting an id the server no longer knows fails
// harmlessly; the local entry stays until a successful call removes it.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.begin(id); err != nil {
		return err
	}
	defer c.finish(id)

	if err := c.client.DeleteNotification(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.refresher.RefreshCount()
	return nil
}

// MarkAllAsRead marks everything read in one server call and re-fetches
// the active filter so the list reflects the result.
func (c *Controller) MarkAllAsRead(ctx context.Context) error {
	if err := c.client.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}

	if err := c.Fetch(ctx, c.ActiveFilter()); err != nil {
		logging.Warn("refetch after mark-all-read failed", "error", err)
	}

	c.refresher.RefreshCount()
	return nil
}

// DeleteAll removes every notification in one server call and clears
// the cache on success.
func (c *Controller) DeleteAll(ctx context.Context) error {
	if err := c.client.DeleteAllNotifications(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	c.refresher.RefreshCount()
	return nil
}

// Clear drops the cached list. Called on logout, when the cache's
// session ends.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.pending = make(map[string]bool)
	c.filter = model.FilterAll
}

// begin marks a per-item mutation as in flight, rejecting a second
// submission for the same id while the first is outstanding. Mutations
// on distinct ids proceed independently.
func (c *Controller) begin(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[id] {
		return fmt.Errorf("action already in flight for notification %s", id)
	}
	c.pending[id] = true
	return nil
}

func (c *Controller) finish(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}
