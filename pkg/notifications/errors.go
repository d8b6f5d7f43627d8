package notifications

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when required fields are missing or invalid.
	ErrValidation = errors.New("notifications: validation failed")

	// ErrNotFound is the parent of every "does not exist" error in this package.
	ErrNotFound = errors.New("notifications: not found")

	// ErrTypeNotFound is returned when no notification type is registered for a category.
	ErrTypeNotFound = fmt.Errorf("%w: notification type", ErrNotFound)

	// ErrUserNotFound is returned when the recipient does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrNotificationNotFound is returned when a notification does not exist
	// or belongs to another user. The two cases are indistinguishable.
	ErrNotificationNotFound = fmt.Errorf("%w: notification", ErrNotFound)

	// ErrFormat is returned when template arguments do not match its placeholders.
	ErrFormat = errors.New("notifications: template format mismatch")

	// ErrInvalidCursor is returned for malformed page cursors and stream event ids.
	ErrInvalidCursor = errors.New("notifications: invalid cursor")
)
