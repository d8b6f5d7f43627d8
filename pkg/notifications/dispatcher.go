package notifications

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/clubnotify/pkg/eventbus"
	"github.com/dmitrymomot/clubnotify/pkg/logger"
)

// StreamDeliverer pushes events to live connections. Both send methods are
// no-ops for users without a connection.
type StreamDeliverer interface {
	IsConnected(userID uuid.UUID) bool
	Send(ctx context.Context, userID uuid.UUID, n Notification) error
	SendUnreadCountUpdate(ctx context.Context, userID uuid.UUID) error
}

// PushDeliverer sends a notification through the external push gateway.
type PushDeliverer interface {
	Send(ctx context.Context, n Notification) error
}

// DeliveryRecorder observes delivery outcomes per channel.
type DeliveryRecorder interface {
	RecordDelivery(channel string, err error)
}

const (
	ChannelStream = "stream"
	ChannelPush   = "push"
)

type nopRecorder struct{}

func (nopRecorder) RecordDelivery(string, error) {}

// Dispatcher routes committed notification events to the stream and push
// channels according to the type's delivery policy.
type Dispatcher struct {
	registry *Registry
	storage  Storage
	stream   StreamDeliverer
	push     PushDeliverer
	recorder DeliveryRecorder
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger for the Dispatcher.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDeliveryRecorder sets the delivery outcome observer.
func WithDeliveryRecorder(r DeliveryRecorder) DispatcherOption {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// NewDispatcher creates a dispatcher. stream or push may be nil when the
// channel is not configured.
func NewDispatcher(registry *Registry, storage Storage, stream StreamDeliverer, push PushDeliverer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		storage:  storage,
		stream:   stream,
		push:     push,
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register subscribes the dispatcher to bus. HandleCreated logs its own
// failures with the notification's details, so the bus is handed nil.
func (d *Dispatcher) Register(bus *eventbus.Bus) {
	eventbus.Subscribe(bus, func(ctx context.Context, e NotificationCreated) error {
		_ = d.HandleCreated(ctx, e)
		return nil
	})
	eventbus.Subscribe(bus, d.HandleUnreadCountChanged)
}

// HandleCreated delivers a new notification. Stream and push delivery are
// attempted independently; a failure on one never skips the other. Every
// returned error has already been logged.
func (d *Dispatcher) HandleCreated(ctx context.Context, e NotificationCreated) error {
	n := e.Notification
	t, err := d.registry.Lookup(n.Category)
	if err != nil {
		d.logFailure(ctx, "", n, err)
		return err
	}

	var errs []error
	// Offline users are not a delivery; they catch up through replay.
	if t.Policy.IncludesStream() && d.stream != nil && d.stream.IsConnected(n.UserID) {
		err := d.stream.Send(ctx, n.UserID, n)
		d.recorder.RecordDelivery(ChannelStream, err)
		if err != nil {
			d.logFailure(ctx, ChannelStream, n, err)
			errs = append(errs, err)
		}
	}
	if t.Policy.IncludesPush() && d.push != nil {
		if err := d.deliverPush(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandleUnreadCountChanged pushes the fresh unread count to the user's stream.
func (d *Dispatcher) HandleUnreadCountChanged(ctx context.Context, e UnreadCountChanged) error {
	if d.stream == nil {
		return nil
	}
	return d.stream.SendUnreadCountUpdate(ctx, e.UserID)
}

// deliverPush sends n and records push_sent on success. On failure the flag
// stays unset for the sweeper.
func (d *Dispatcher) deliverPush(ctx context.Context, n Notification) error {
	err := d.push.Send(ctx, n)
	d.recorder.RecordDelivery(ChannelPush, err)
	if err != nil {
		d.logFailure(ctx, ChannelPush, n, err)
		return err
	}
	if _, err := d.storage.MarkPushSent(ctx, n.ID); err != nil {
		d.logFailure(ctx, ChannelPush, n, err)
		return err
	}
	return nil
}

func (d *Dispatcher) logFailure(ctx context.Context, channel string, n Notification, err error) {
	attrs := []slog.Attr{
		logger.NotificationID(n.ID),
		logger.UserID(n.UserID),
		logger.Category(n.Category),
		logger.Error(err),
	}
	if channel != "" {
		attrs = append(attrs, logger.Channel(channel))
	}
	d.logger.LogAttrs(ctx, slog.LevelWarn, "notification delivery failed", attrs...)
}
