package push

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/notifications"
)

// Adapter delivers notifications through a Gateway to the owner's device.
type Adapter struct {
	users   notifications.UserDirectory
	gateway Gateway
	timeout time.Duration
	logger  *slog.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets the logger for the Adapter.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSendTimeout bounds a single gateway call.
func WithSendTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) { a.timeout = d }
}

// NewAdapter creates an Adapter.
func NewAdapter(users notifications.UserDirectory, gateway Gateway, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		users:   users,
		gateway: gateway,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Send pushes n to its owner. Users without a push address are skipped
// without error. Gateway failures are returned as ErrProvider so the caller
// can leave push_sent unset for a retry.
func (a *Adapter) Send(ctx context.Context, n notifications.Notification) error {
	user, err := a.users.FindByID(ctx, n.UserID)
	if err != nil {
		return err
	}

	address := strings.TrimSpace(user.PushAddress)
	if address == "" {
		a.logger.LogAttrs(ctx, slog.LevelDebug, "push skipped",
			logger.UserID(n.UserID),
			logger.NotificationID(n.ID),
			logger.Reason("no push address"),
			logger.Component("push"),
		)
		return nil
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	id, err := a.gateway.Send(ctx, address, MessageFor(n))
	if err != nil {
		if !errors.Is(err, ErrProvider) {
			err = errors.Join(ErrProvider, err)
		}
		return err
	}

	a.logger.LogAttrs(ctx, slog.LevelDebug, "push sent",
		logger.UserID(n.UserID),
		logger.NotificationID(n.ID),
		slog.String("delivery_id", id),
		logger.Component("push"),
	)
	return nil
}

// MessageFor builds the push message of n: the category as title, the
// rendered content as body.
func MessageFor(n notifications.Notification) Message {
	data := map[string]string{
		"notification_id": strconv.FormatInt(n.ID, 10),
		"category":        string(n.Category),
		"event_id":        n.EventID(),
	}
	if n.TargetType != "" {
		data["target_type"] = n.TargetType
		data["target_id"] = n.TargetID
	}
	return Message{
		Title: string(n.Category),
		Body:  n.Content,
		Data:  data,
	}
}
