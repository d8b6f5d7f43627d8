package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/notifications"
)

// Source provides the notification data the registry streams.
type Source interface {
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	Since(ctx context.Context, userID uuid.UUID, cursor notifications.Cursor) ([]notifications.Notification, error)
}

// Observer is notified about connection lifecycle changes.
type Observer interface {
	ConnectionOpened()
	ConnectionClosed(reason string)
}

// Reasons a registration ends.
const (
	ReasonCompleted  = "completed"
	ReasonTimedOut   = "timed_out"
	ReasonErrored    = "errored"
	ReasonSuperseded = "superseded"
	ReasonShutdown   = "shutdown"
)

type nopObserver struct{}

func (nopObserver) ConnectionOpened()       {}
func (nopObserver) ConnectionClosed(string) {}

type registration struct {
	userID uuid.UUID
	conn   Conn
	timer  *time.Timer
	once   sync.Once
	opened atomic.Bool
}

// Registry tracks at most one live connection per user. Entries are replaced
// and removed atomically per user; no lock is held while writing to a
// connection.
type Registry struct {
	conns sync.Map // uuid.UUID -> *registration
	count atomic.Int64

	source            Source
	presence          Presence
	observer          Observer
	timeout           time.Duration
	heartbeatInterval time.Duration
	logger            *slog.Logger
	now               func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for the Registry.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPresence enables cross-instance presence tracking.
func WithPresence(p Presence) Option {
	return func(r *Registry) {
		if p != nil {
			r.presence = p
		}
	}
}

// WithObserver sets the connection lifecycle observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithTimeout sets the lifetime of a connection.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithHeartbeatInterval sets how often Run sends heartbeats.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.heartbeatInterval = d
		}
	}
}

// NewRegistry creates an empty registry reading notification data from source.
func NewRegistry(source Source, opts ...Option) *Registry {
	r := &Registry{
		source:            source,
		presence:          noPresence{},
		observer:          nopObserver{},
		timeout:           30 * time.Minute,
		heartbeatInterval: 30 * time.Second,
		logger:            slog.Default(),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect registers conn for userID, closing any previous connection of the
// user. An initial heartbeat probes the connection; if it fails the
// registration is rolled back and ErrConnectionFailed is returned.
// A parseable lastEventID replays what the user missed since then.
func (r *Registry) Connect(ctx context.Context, userID uuid.UUID, conn Conn, lastEventID string) error {
	reg := &registration{userID: userID, conn: conn}
	reg.timer = time.AfterFunc(r.timeout, func() {
		r.cleanup(context.Background(), reg, ReasonTimedOut)
	})

	if prev, loaded := r.conns.Swap(userID, reg); loaded {
		r.cleanup(ctx, prev.(*registration), ReasonSuperseded)
	} else {
		r.count.Add(1)
	}

	if err := conn.Send(ctx, heartbeatEvent(r.now())); err != nil {
		r.cleanup(ctx, reg, ReasonErrored)
		return errors.Join(ErrConnectionFailed, err)
	}

	reg.opened.Store(true)
	r.observer.ConnectionOpened()
	if err := r.presence.Register(ctx, userID); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "presence register failed",
			logger.UserID(userID),
			logger.Component("stream"),
			logger.Error(err),
		)
	}

	r.logger.LogAttrs(ctx, slog.LevelDebug, "stream connected",
		logger.UserID(userID),
		logger.EventID(lastEventID),
		logger.Component("stream"),
	)

	if lastEventID != "" {
		r.replay(ctx, reg, lastEventID)
	}
	return nil
}

// replay sends missed_notification events after lastEventID in creation
// order. Any failure stops the replay but keeps the connection.
func (r *Registry) replay(ctx context.Context, reg *registration, lastEventID string) {
	cursor, err := notifications.ParseEventID(lastEventID)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "replay skipped",
			logger.UserID(reg.userID),
			logger.EventID(lastEventID),
			logger.Reason("unparseable event id"),
			logger.Component("stream"),
		)
		return
	}

	missed, err := r.source.Since(ctx, reg.userID, cursor)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "replay aborted",
			logger.UserID(reg.userID),
			logger.Component("stream"),
			logger.Error(err),
		)
		return
	}

	for i, n := range missed {
		if err := reg.conn.Send(ctx, notificationEvent(EventMissedNotification, n)); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "replay aborted",
				logger.UserID(reg.userID),
				logger.NotificationID(n.ID),
				slog.Int("sent", i),
				logger.Component("stream"),
				logger.Error(err),
			)
			return
		}
	}
}

// Send delivers a notification event to userID's connection. It is a no-op
// when the user is not connected. A transport error removes the connection.
func (r *Registry) Send(ctx context.Context, userID uuid.UUID, n notifications.Notification) error {
	return r.sendTo(ctx, userID, notificationEvent(EventNotification, n))
}

// SendUnreadCountUpdate sends the current unread count to userID's connection.
func (r *Registry) SendUnreadCountUpdate(ctx context.Context, userID uuid.UUID) error {
	if !r.IsConnected(userID) {
		return nil
	}
	count, err := r.source.UnreadCount(ctx, userID)
	if err != nil {
		return fmt.Errorf("stream: unread count: %w", err)
	}
	return r.sendTo(ctx, userID, Event{Name: EventUnreadCount, Data: unreadCountPayload{Count: count}})
}

func (r *Registry) sendTo(ctx context.Context, userID uuid.UUID, e Event) error {
	v, ok := r.conns.Load(userID)
	if !ok {
		return nil
	}
	reg := v.(*registration)
	if err := reg.conn.Send(ctx, e); err != nil {
		r.cleanup(ctx, reg, ReasonErrored)
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

// BroadcastResult summarises a Broadcast.
type BroadcastResult struct {
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
	TotalCount   int `json:"total_count"`
}

// Broadcast sends an event to every connection. Each delivery is independent;
// failed connections are removed.
func (r *Registry) Broadcast(ctx context.Context, name string, payload any) BroadcastResult {
	var res BroadcastResult
	e := Event{Name: name, Data: payload}
	for _, reg := range r.snapshot() {
		res.TotalCount++
		if err := reg.conn.Send(ctx, e); err != nil {
			res.FailureCount++
			r.cleanup(ctx, reg, ReasonErrored)
			continue
		}
		res.SuccessCount++
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "broadcast finished",
		logger.EventType(name),
		slog.Int("success", res.SuccessCount),
		slog.Int("failure", res.FailureCount),
		logger.Component("stream"),
	)
	return res
}

// Disconnect removes userID's registration if it still holds conn.
func (r *Registry) Disconnect(userID uuid.UUID, conn Conn) {
	v, ok := r.conns.Load(userID)
	if !ok {
		return
	}
	if reg := v.(*registration); reg.conn == conn {
		r.cleanup(context.Background(), reg, ReasonCompleted)
	}
}

// IsConnected reports whether userID has a connection on this instance.
func (r *Registry) IsConnected(userID uuid.UUID) bool {
	_, ok := r.conns.Load(userID)
	return ok
}

// IsConnectedAnywhere also consults the presence store. Lookup errors count
// as disconnected.
func (r *Registry) IsConnectedAnywhere(ctx context.Context, userID uuid.UUID) bool {
	if r.IsConnected(userID) {
		return true
	}
	online, err := r.presence.IsOnline(ctx, userID)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "presence lookup failed",
			logger.UserID(userID),
			logger.Component("stream"),
			logger.Error(err),
		)
		return false
	}
	return online
}

// Count returns the number of connections on this instance.
func (r *Registry) Count() int {
	return int(r.count.Load())
}

// Status is the connection status of one user.
type Status struct {
	Connected        bool `json:"connected"`
	TotalConnections int  `json:"total_connections"`
}

// Status reports whether userID is connected and the instance's connection count.
func (r *Registry) Status(ctx context.Context, userID uuid.UUID) Status {
	return Status{
		Connected:        r.IsConnectedAnywhere(ctx, userID),
		TotalConnections: r.Count(),
	}
}

// Run sends heartbeats to every connection and refreshes presence until ctx
// is done. Connections failing a heartbeat are removed.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.heartbeat(ctx)
		}
	}
}

func (r *Registry) heartbeat(ctx context.Context) {
	e := heartbeatEvent(r.now())
	var alive []uuid.UUID
	for _, reg := range r.snapshot() {
		if err := reg.conn.Send(ctx, e); err != nil {
			r.cleanup(ctx, reg, ReasonErrored)
			continue
		}
		alive = append(alive, reg.userID)
	}
	if len(alive) == 0 {
		return
	}
	if err := r.presence.Refresh(ctx, alive); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "presence refresh failed",
			logger.Count(len(alive)),
			logger.Component("stream"),
			logger.Error(err),
		)
	}
}

// Close ends every connection.
func (r *Registry) Close() error {
	for _, reg := range r.snapshot() {
		r.cleanup(context.Background(), reg, ReasonShutdown)
	}
	return nil
}

func (r *Registry) snapshot() []*registration {
	var regs []*registration
	r.conns.Range(func(_, v any) bool {
		regs = append(regs, v.(*registration))
		return true
	})
	return regs
}

// cleanup is the single exit path of a registration. It only removes the map
// entry if the entry still points at reg, so a late callback never drops a
// newer connection of the same user.
func (r *Registry) cleanup(ctx context.Context, reg *registration, reason string) {
	reg.once.Do(func() {
		reg.timer.Stop()
		if r.conns.CompareAndDelete(reg.userID, reg) {
			r.count.Add(-1)
			if err := r.presence.Unregister(context.WithoutCancel(ctx), reg.userID); err != nil {
				r.logger.LogAttrs(ctx, slog.LevelWarn, "presence unregister failed",
					logger.UserID(reg.userID),
					logger.Component("stream"),
					logger.Error(err),
				)
			}
		}
		_ = reg.conn.Close()
		if reg.opened.Load() {
			r.observer.ConnectionClosed(reason)
		}

		r.logger.LogAttrs(ctx, slog.LevelDebug, "stream disconnected",
			logger.UserID(reg.userID),
			logger.Reason(reason),
			logger.Component("stream"),
		)
	})
}
