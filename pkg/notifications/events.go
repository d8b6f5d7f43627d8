package notifications

import "github.com/google/uuid"

// NotificationCreated is published once the notification row has committed.
type NotificationCreated struct {
	Notification Notification
}

func (NotificationCreated) EventName() string { return "notifications.created" }

// UnreadCountChanged is published after a user's unread count went down.
type UnreadCountChanged struct {
	UserID uuid.UUID
}

func (UnreadCountChanged) EventName() string { return "notifications.unread_count_changed" }
