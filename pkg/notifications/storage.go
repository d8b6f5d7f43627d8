package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage is the persistence boundary for notifications. Flag updates are
// conditional so concurrent callers converge without lost updates.
type Storage interface {
	// Create assigns n.ID and stores n.
	Create(ctx context.Context, n *Notification) error

	// Get returns ErrNotificationNotFound when no row has id.
	Get(ctx context.Context, id int64) (Notification, error)

	// ListPage returns up to limit rows of userID with id < beforeID, newest
	// first. beforeID 0 means no upper bound.
	ListPage(ctx context.Context, userID uuid.UUID, beforeID int64, limit int) ([]Notification, error)

	// ListSince returns up to limit rows of userID created after cursor,
	// oldest first.
	ListSince(ctx context.Context, userID uuid.UUID, cursor Cursor, limit int) ([]Notification, error)

	// MarkRead sets is_read; changed is false if it was already set.
	MarkRead(ctx context.Context, id int64) (changed bool, err error)

	// MarkAllRead sets is_read on every unread row of userID.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)

	// MarkPushSent sets push_sent; changed is false if it was already set.
	MarkPushSent(ctx context.Context, id int64) (changed bool, err error)

	// Delete removes the row and reports whether it was unread.
	Delete(ctx context.Context, id int64) (wasUnread bool, err error)

	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)

	// ListPushPending returns rows in categories with push_sent unset that
	// were created before createdBefore, oldest first.
	ListPushPending(ctx context.Context, categories []Category, createdBefore time.Time, limit int) ([]Notification, error)
}

// TypeStorage persists the notification type catalog.
type TypeStorage interface {
	// SyncTypes upserts types by category and returns them with IDs set.
	SyncTypes(ctx context.Context, types []NotificationType) ([]NotificationType, error)
}
