package logger

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Error logs err under "error". A nil error yields an empty attribute, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID logs the recipient or caller. uuid.Nil yields an empty attribute.
func UserID(id uuid.UUID) slog.Attr {
	if id == uuid.Nil {
		return slog.Attr{}
	}
	return slog.String("user_id", id.String())
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func NotificationID(id int64) slog.Attr { return slog.Int64("notification_id", id) }

// Category accepts notifications.Category or any other string-like value.
func Category[T ~string](c T) slog.Attr { return slog.String("category", string(c)) }

// EventID logs a stream event id such as LIKE_42_1700000000000.
func EventID(id string) slog.Attr { return slog.String("event_id", id) }

// EventType logs the name of an SSE event.
func EventType(name string) slog.Attr { return slog.String("event_type", name) }

// Event logs the name of an event bus event.
func Event(name string) slog.Attr { return slog.String("event", name) }

// Channel is "stream" or "push".
func Channel(name string) slog.Attr { return slog.String("channel", name) }

func Count(n int) slog.Attr { return slog.Int("count", n) }

func Duration(d time.Duration) slog.Attr { return slog.Duration("duration", d) }

func Component(name string) slog.Attr { return slog.String("component", name) }

func Reason(reason string) slog.Attr { return slog.String("reason", reason) }
