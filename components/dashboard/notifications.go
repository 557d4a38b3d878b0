package dashboard

import "sync"

// NotificationCenter owns the read state of one page's notifications.
type NotificationCenter struct {
	mu    sync.RWMutex
	items []Notification
}

// NewNotificationCenter copies items so the source dataset stays untouched.
func NewNotificationCenter(items []Notification) *NotificationCenter {
	return &NotificationCenter{items: append([]Notification(nil), items...)}
}

// Items returns a snapshot of the notifications.
func (c *NotificationCenter) Items() []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Notification(nil), c.items...)
}

// UnreadCount reports how many notifications are still unread.
func (c *NotificationCenter) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, item := range c.items {
		if item.Unread {
			count++
		}
	}
	return count
}

// MarkAllRead clears every unread flag and returns how many changed.
func (c *NotificationCenter) MarkAllRead() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := 0
	for i := range c.items {
		if c.items[i].Unread {
			c.items[i].Unread = false
			changed++
		}
	}
	return changed
}

// Views renders the current notifications.
func (c *NotificationCenter) Views() []NotificationView {
	return RenderNotifications(c.Items())
}

// Clone returns an independent copy.
func (c *NotificationCenter) Clone() *NotificationCenter {
	return NewNotificationCenter(c.Items())
}
