package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted, rendered notification owned by one user.
// Content never changes after creation; IsRead and PushSent only go from
// false to true.
type Notification struct {
	ID         int64     `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	TypeID     int64     `json:"type_id"`
	Category   Category  `json:"category"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	PushSent   bool      `json:"push_sent"`
	TargetType string    `json:"target_type,omitempty"`
	TargetID   string    `json:"target_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventID is the stream event identifier of n; see EventID.
func (n Notification) EventID() string {
	return EventID(n)
}

// Cursor returns the replay position right after n.
func (n Notification) Cursor() Cursor {
	return Cursor{ID: n.ID, CreatedAt: n.CreatedAt}
}

// User is the slice of the user directory this package needs.
type User struct {
	ID          uuid.UUID
	PushAddress string
}

// UserDirectory resolves users. Implementations return ErrUserNotFound for
// unknown ids.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
}
