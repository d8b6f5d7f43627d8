package stream

import (
	"time"

	"github.com/dmitrymomot/clubnotify/pkg/notifications"
)

// Event names sent to clients.
const (
	EventHeartbeat          = "heartbeat"
	EventNotification       = "notification"
	EventMissedNotification = "missed_notification"
	EventUnreadCount        = "unread_count"
)

// Event is one server-sent event. ID is empty for events that cannot be
// resumed from, such as heartbeats.
type Event struct {
	Name string
	ID   string
	Data any
}

// NotificationPayload is the data of notification and missed_notification events.
type NotificationPayload struct {
	ID         int64     `json:"id"`
	Category   string    `json:"category"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	TargetType string    `json:"target_type,omitempty"`
	TargetID   string    `json:"target_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type heartbeatPayload struct {
	Time time.Time `json:"time"`
}

type unreadCountPayload struct {
	Count int `json:"count"`
}

func notificationEvent(name string, n notifications.Notification) Event {
	return Event{
		Name: name,
		ID:   n.EventID(),
		Data: NotificationPayload{
			ID:         n.ID,
			Category:   string(n.Category),
			Content:    n.Content,
			IsRead:     n.IsRead,
			TargetType: n.TargetType,
			TargetID:   n.TargetID,
			CreatedAt:  n.CreatedAt,
		},
	}
}

func heartbeatEvent(now time.Time) Event {
	return Event{Name: EventHeartbeat, Data: heartbeatPayload{Time: now.UTC()}}
}
