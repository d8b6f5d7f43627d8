package push

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/clubnotify/pkg/logger"
)

// Message is a provider-neutral push payload.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Gateway delivers a push message to a device address and returns the
// provider's delivery id.
type Gateway interface {
	Send(ctx context.Context, address string, msg Message) (string, error)
}

// LogGateway logs messages instead of sending them. For development.
type LogGateway struct {
	logger *slog.Logger
}

// NewLogGateway creates a LogGateway writing to l, or slog.Default when nil.
func NewLogGateway(l *slog.Logger) *LogGateway {
	if l == nil {
		l = slog.Default()
	}
	return &LogGateway{logger: l}
}

func (g *LogGateway) Send(ctx context.Context, address string, msg Message) (string, error) {
	id := "log-" + uuid.NewString()
	g.logger.LogAttrs(ctx, slog.LevelInfo, "push message",
		logger.Component("push"),
		slog.String("delivery_id", id),
		slog.String("address", address),
		slog.String("title", msg.Title),
		slog.String("body", msg.Body),
		slog.Any("data", msg.Data),
	)
	return id, nil
}
