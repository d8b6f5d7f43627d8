package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/clubnotify/pkg/eventbus"
	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/txhook"
)

// Publisher hands events to subscribers after the current unit of work commits.
type Publisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, eventbus.Event) {}

// Service creates notifications, enforces ownership on read and delete,
// and serves paginated listings.
type Service struct {
	storage  Storage
	registry *Registry
	users    UserDirectory
	tx       txhook.Transactor
	events   Publisher
	logger   *slog.Logger
	now      func() time.Time

	defaultPageSize int
	maxPageSize     int
	replayLimit     int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for the Service.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTransactor sets the unit-of-work runner. Defaults to txhook.LocalTransactor.
func WithTransactor(tx txhook.Transactor) ServiceOption {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// WithPublisher sets where domain events are published.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithPageSize sets the default and maximum listing page sizes.
func WithPageSize(def, limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.maxPageSize = limit
		}
		if def > 0 {
			s.defaultPageSize = def
		}
	}
}

// WithReplayLimit bounds the number of rows returned by Since.
func WithReplayLimit(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.replayLimit = n
		}
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithConfig applies page size and replay settings from cfg.
func WithConfig(cfg Config) ServiceOption {
	return func(s *Service) {
		WithPageSize(cfg.DefaultPageSize, cfg.MaxPageSize)(s)
		WithReplayLimit(cfg.ReplayLimit)(s)
	}
}

// NewService creates a notification service.
func NewService(storage Storage, registry *Registry, users UserDirectory, opts ...ServiceOption) *Service {
	s := &Service{
		storage:         storage,
		registry:        registry,
		users:           users,
		tx:              txhook.LocalTransactor{},
		events:          nopPublisher{},
		logger:          slog.Default(),
		now:             time.Now,
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
		replayLimit:     500,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the type catalog the service renders with.
func (s *Service) Registry() *Registry { return s.registry }

// CreateOption customises a single Create call.
type CreateOption func(*Notification)

// WithTarget records the domain object the notification refers to.
func WithTarget(targetType, targetID string) CreateOption {
	return func(n *Notification) {
		n.TargetType = targetType
		n.TargetID = targetID
	}
}

// Create renders and persists a notification for userID and publishes
// NotificationCreated once the write has committed. Validation, unknown user,
// unknown category and render errors abort before anything is written.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, category Category, args []any, opts ...CreateOption) (Notification, error) {
	if userID == uuid.Nil {
		return Notification{}, errors.Join(ErrValidation, errors.New("user id is required"))
	}
	if strings.TrimSpace(string(category)) == "" {
		return Notification{}, errors.Join(ErrValidation, errors.New("category is required"))
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Notification{}, err
		}
		return Notification{}, fmt.Errorf("resolve user: %w", err)
	}

	t, err := s.registry.Lookup(category)
	if err != nil {
		return Notification{}, err
	}
	content, err := t.Render(args...)
	if err != nil {
		return Notification{}, err
	}

	n := Notification{
		UserID:    userID,
		TypeID:    t.ID,
		Category:  t.Category,
		Content:   content,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	for _, opt := range opts {
		opt(&n)
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.storage.Create(ctx, &n); err != nil {
			return err
		}
		s.events.Publish(ctx, NotificationCreated{Notification: n})
		return nil
	})
	if err != nil {
		return Notification{}, fmt.Errorf("create notification: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelDebug, "notification created",
		logger.NotificationID(n.ID),
		logger.UserID(n.UserID),
		logger.Category(n.Category),
	)
	return n, nil
}

// ListPage returns up to pageSize notifications older than cursor, newest
// first. A nil cursor is the first page; reading it marks every notification
// of the user as read. Items are returned as they were before that update.
func (s *Service) ListPage(ctx context.Context, userID uuid.UUID, cursor *int64, pageSize int) (Page, error) {
	size := clampPageSize(pageSize, s.defaultPageSize, s.maxPageSize)

	var before int64
	if cursor != nil {
		if *cursor <= 0 {
			return Page{}, fmt.Errorf("%w: %d", ErrInvalidCursor, *cursor)
		}
		before = *cursor
	}

	// one extra row tells whether another page exists
	rows, err := s.storage.ListPage(ctx, userID, before, size+1)
	if err != nil {
		return Page{}, fmt.Errorf("list notifications: %w", err)
	}

	page := Page{Items: rows}
	if len(rows) > size {
		page.Items = rows[:size]
		page.HasMore = true
	}
	if page.Items == nil {
		page.Items = []Notification{}
	}
	if n := len(page.Items); n > 0 {
		last := page.Items[n-1].ID
		page.NextCursor = &last
	}

	if cursor == nil {
		if _, err := s.MarkAllAsRead(ctx, userID); err != nil {
			return Page{}, err
		}
	}

	page.UnreadCount, err = s.storage.CountUnread(ctx, userID)
	if err != nil {
		return Page{}, fmt.Errorf("count unread notifications: %w", err)
	}
	return page, nil
}

// Get returns a notification owned by requesterID.
func (s *Service) Get(ctx context.Context, notificationID int64, requesterID uuid.UUID) (Notification, error) {
	return s.owned(ctx, notificationID, requesterID)
}

// MarkAsRead marks one notification read. It is idempotent; the unread count
// update is only published when the flag actually changed.
func (s *Service) MarkAsRead(ctx context.Context, notificationID int64, requesterID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.owned(ctx, notificationID, requesterID); err != nil {
			return err
		}
		changed, err := s.storage.MarkRead(ctx, notificationID)
		if err != nil {
			return fmt.Errorf("mark notification read: %w", err)
		}
		if changed {
			s.events.Publish(ctx, UnreadCountChanged{UserID: requesterID})
		}
		return nil
	})
}

// MarkAllAsRead marks every unread notification of userID read and returns
// how many changed. Nothing is published when there was nothing unread.
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	var changed int64
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		changed, err = s.storage.MarkAllRead(ctx, userID)
		if err != nil {
			return fmt.Errorf("mark all notifications read: %w", err)
		}
		if changed > 0 {
			s.events.Publish(ctx, UnreadCountChanged{UserID: userID})
		}
		return nil
	})
	return changed, err
}

// Delete removes a notification owned by userID. The unread count update is
// only published when the deleted row was unread.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, notificationID int64) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.owned(ctx, notificationID, userID); err != nil {
			return err
		}
		wasUnread, err := s.storage.Delete(ctx, notificationID)
		if err != nil {
			if errors.Is(err, ErrNotificationNotFound) {
				return err
			}
			return fmt.Errorf("delete notification: %w", err)
		}
		if wasUnread {
			s.events.Publish(ctx, UnreadCountChanged{UserID: userID})
		}
		return nil
	})
}

// UnreadCount returns the number of unread notifications of userID.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.storage.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkPushSent records that the push gateway accepted notificationID.
func (s *Service) MarkPushSent(ctx context.Context, notificationID int64) error {
	if _, err := s.storage.MarkPushSent(ctx, notificationID); err != nil {
		return fmt.Errorf("mark push sent: %w", err)
	}
	return nil
}

// Since returns the notifications of userID created after cursor, oldest first.
func (s *Service) Since(ctx context.Context, userID uuid.UUID, cursor Cursor) ([]Notification, error) {
	rows, err := s.storage.ListSince(ctx, userID, cursor, s.replayLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications since cursor: %w", err)
	}
	return rows, nil
}

// owned loads a notification and hides rows of other users behind
// ErrNotificationNotFound.
func (s *Service) owned(ctx context.Context, notificationID int64, requesterID uuid.UUID) (Notification, error) {
	n, err := s.storage.Get(ctx, notificationID)
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return Notification{}, ErrNotificationNotFound
		}
		return Notification{}, fmt.Errorf("get notification: %w", err)
	}
	if n.UserID != requesterID {
		return Notification{}, ErrNotificationNotFound
	}
	return n, nil
}
