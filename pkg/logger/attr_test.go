package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/clubnotify/pkg/logger"
)

type category string

func TestEmptyAttrs(t *testing.T) {
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	assert.True(t, logger.UserID(uuid.Nil).Equal(slog.Attr{}))
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
}

func TestAttrs(t *testing.T) {
	boom := errors.New("boom")
	uid := uuid.MustParse("0190f1a4-6b7e-7cc0-9a3e-1d2c3b4a5f60")

	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want any
	}{
		{"error", logger.Error(boom), "error", boom},
		{"user id", logger.UserID(uid), "user_id", uid.String()},
		{"request id", logger.RequestID("abc"), "request_id", "abc"},
		{"notification id", logger.NotificationID(42), "notification_id", int64(42)},
		{"category", logger.Category(category("LIKE")), "category", "LIKE"},
		{"event id", logger.EventID("LIKE_1_2"), "event_id", "LIKE_1_2"},
		{"event type", logger.EventType("notification"), "event_type", "notification"},
		{"event", logger.Event("notification.created"), "event", "notification.created"},
		{"channel", logger.Channel("push"), "channel", "push"},
		{"count", logger.Count(3), "count", int64(3)},
		{"duration", logger.Duration(time.Second), "duration", time.Second},
		{"component", logger.Component("stream"), "component", "stream"},
		{"reason", logger.Reason("timeout"), "reason", "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.Any())
		})
	}
}
