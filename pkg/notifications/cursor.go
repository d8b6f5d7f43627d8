package notifications

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cursor is a replay position: everything created strictly after
// (CreatedAt, ID) is newer than the cursor.
type Cursor struct {
	ID        int64
	CreatedAt time.Time
}

// After reports whether n sorts strictly after c in replay order.
func (c Cursor) After(n Notification) bool {
	if n.CreatedAt.Equal(c.CreatedAt) {
		return n.ID > c.ID
	}
	return n.CreatedAt.After(c.CreatedAt)
}

// EventID builds the stream event identifier CATEGORY_ID_UNIXMILLI. It can be
// regenerated from the row at any time, so clients may use it to dedupe and to
// resume after reconnecting.
func EventID(n Notification) string {
	return fmt.Sprintf("%s_%d_%d", n.Category, n.ID, n.CreatedAt.UnixMilli())
}

// ParseEventID turns an event identifier back into a replay cursor. The id is
// parsed from the right since categories may contain underscores.
func ParseEventID(s string) (Cursor, error) {
	s = strings.TrimSpace(s)

	rest, millisPart, ok := cutLast(s, "_")
	if !ok {
		return Cursor{}, fmt.Errorf("%w: %q", ErrInvalidCursor, s)
	}
	category, idPart, ok := cutLast(rest, "_")
	if !ok || category == "" {
		return Cursor{}, fmt.Errorf("%w: %q", ErrInvalidCursor, s)
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return Cursor{}, fmt.Errorf("%w: bad id in %q", ErrInvalidCursor, s)
	}
	millis, err := strconv.ParseInt(millisPart, 10, 64)
	if err != nil || millis < 0 {
		return Cursor{}, fmt.Errorf("%w: bad timestamp in %q", ErrInvalidCursor, s)
	}

	return Cursor{ID: id, CreatedAt: time.UnixMilli(millis).UTC()}, nil
}

// ParsePageCursor parses the numeric page cursor used by listing.
func ParsePageCursor(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCursor, s)
	}
	return &id, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
