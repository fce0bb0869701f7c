package lib

import (
	"context"
	"log"
	"sync"

	shared "uniforum/shared"
)

type NotificationsRemote interface {
	ListNotifications(ctx context.Context) ([]*shared.Notification, *shared.ApiError)
	MarkNotificationRead(ctx context.Context, id string) *shared.ApiError
	MarkAllNotificationsRead(ctx context.Context) *shared.ApiError
}

// Notifier surfaces a new notification outside the terminal.
type Notifier interface {
	Notify(title, message string) error
}

type NotificationCache struct {
	client   NotificationsRemote
	notifier Notifier
	settings *SettingsCache

	mu            sync.Mutex
	notifications []*shared.Notification
	loaded        bool
	err           *shared.ApiError
}

// NewNotificationCache wires an optional desktop notifier; it is only used
// while push notifications are enabled in settings.
func NewNotificationCache(client NotificationsRemote, settings *SettingsCache, notifier Notifier) *NotificationCache {
	return &NotificationCache{client: client, settings: settings, notifier: notifier}
}

func cloneNotifications(ns []*shared.Notification) []*shared.Notification {
	res := make([]*shared.Notification, len(ns))
	for i, n := range ns {
		c := *n
		res[i] = &c
	}
	return res
}

func (c *NotificationCache) Notifications() []*shared.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneNotifications(c.notifications)
}

func (c *NotificationCache) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

func (c *NotificationCache) Err() *shared.ApiError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Load replaces the list. On failure the previous list is kept.
func (c *NotificationCache) Load(ctx context.Context) ([]*shared.Notification, *shared.ApiError) {
	ns, apiErr := c.client.ListNotifications(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if apiErr != nil {
		c.err = apiErr
		log.Printf("Error loading notifications, keeping cached list: %v\n", apiErr)
		return cloneNotifications(c.notifications), apiErr
	}

	c.notifications = []*shared.Notification{}
	for _, n := range ns {
		if n != nil {
			c.notifications = append(c.notifications, n)
		}
	}
	c.loaded = true
	c.err = nil
	return cloneNotifications(c.notifications), nil
}

// Poll loads and reports unread notifications that were not present before.
// The first poll only establishes the baseline. New ones go to the notifier
// when push notifications are on.
func (c *NotificationCache) Poll(ctx context.Context) ([]*shared.Notification, *shared.ApiError) {
	c.mu.Lock()
	firstLoad := !c.loaded
	known := map[string]bool{}
	for _, n := range c.notifications {
		known[n.Id] = true
	}
	c.mu.Unlock()

	ns, apiErr := c.Load(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	fresh := []*shared.Notification{}
	if firstLoad {
		return fresh, nil
	}
	for _, n := range ns {
		if !n.Read && !known[n.Id] {
			fresh = append(fresh, n)
		}
	}

	if c.notifier != nil && (c.settings == nil || c.settings.Get(shared.SettingPushNotifications)) {
		for _, n := range fresh {
			err := c.notifier.Notify(notificationTitle(n), n.Message)
			if err != nil {
				log.Printf("Error sending desktop notification: %v\n", err)
			}
		}
	}

	return fresh, nil
}

func notificationTitle(n *shared.Notification) string {
	switch n.Type {
	case shared.NotificationTypeLike:
		return "New like"
	case shared.NotificationTypeComment:
		return "New comment"
	case shared.NotificationTypeMention:
		return "You were mentioned"
	case shared.NotificationTypeFollow:
		return "New follower"
	}
	return "Uniforum"
}

// MarkRead flags one notification as read, rolling back on failure.
func (c *NotificationCache) MarkRead(ctx context.Context, id string) *shared.ApiError {
	c.mu.Lock()
	var target *shared.Notification
	for _, n := range c.notifications {
		if n.Id == id {
			target = n
			break
		}
	}
	if target == nil {
		c.mu.Unlock()
		return notFound("notification", id)
	}
	if target.Read {
		c.mu.Unlock()
		return nil
	}
	target.Read = true
	c.mu.Unlock()

	apiErr := c.client.MarkNotificationRead(ctx, id)
	if apiErr != nil {
		c.mu.Lock()
		target.Read = false
		c.err = apiErr
		c.mu.Unlock()
		log.Printf("Error marking notification %s read, rolled back: %v\n", id, apiErr)
		return apiErr
	}
	return nil
}

// MarkAllRead flags every notification, restoring the unread ones on
// failure.
func (c *NotificationCache) MarkAllRead(ctx context.Context) *shared.ApiError {
	c.mu.Lock()
	var flipped []*shared.Notification
	for _, n := range c.notifications {
		if !n.Read {
			n.Read = true
			flipped = append(flipped, n)
		}
	}
	c.mu.Unlock()

	apiErr := c.client.MarkAllNotificationsRead(ctx)
	if apiErr != nil {
		c.mu.Lock()
		for _, n := range flipped {
			n.Read = false
		}
		c.err = apiErr
		c.mu.Unlock()
		log.Printf("Error marking all notifications read, rolled back: %v\n", apiErr)
		return apiErr
	}
	return nil
}

func (c *NotificationCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = nil
	c.loaded = false
	c.err = nil
}
