package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/clubnotify/pkg/pg"
)

var (
	_ Storage     = (*PostgresStorage)(nil)
	_ TypeStorage = (*PostgresStorage)(nil)
)

// PostgresStorage implements Storage and TypeStorage on PostgreSQL. Every
// query joins the transaction carried by ctx when there is one.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a storage backed by pool.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const notificationColumns = `n.id, n.user_id, n.type_id, t.category, n.content, n.is_read, n.push_sent,
	COALESCE(n.target_type, ''), COALESCE(n.target_id, ''), n.created_at`

const (
	qInsert = `
INSERT INTO notifications (user_id, type_id, content, target_type, target_id, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
RETURNING id;
`
	qGet = `
SELECT ` + notificationColumns + `
FROM notifications n
JOIN notification_types t ON t.id = n.type_id
WHERE n.id = $1;
`
	qListPage = `
SELECT ` + notificationColumns + `
FROM notifications n
JOIN notification_types t ON t.id = n.type_id
WHERE n.user_id = $1 AND ($2::bigint = 0 OR n.id < $2)
ORDER BY n.id DESC
LIMIT $3;
`
	qListSince = `
SELECT ` + notificationColumns + `
FROM notifications n
JOIN notification_types t ON t.id = n.type_id
WHERE n.user_id = $1 AND (n.created_at, n.id) > ($2, $3)
ORDER BY n.created_at ASC, n.id ASC
LIMIT $4;
`
	qMarkRead = `
UPDATE notifications SET is_read = TRUE
WHERE id = $1 AND NOT is_read;
`
	qMarkAllRead = `
UPDATE notifications SET is_read = TRUE
WHERE user_id = $1 AND NOT is_read;
`
	qMarkPushSent = `
UPDATE notifications SET push_sent = TRUE
WHERE id = $1 AND NOT push_sent;
`
	qExists = `
SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1);
`
	qDelete = `
DELETE FROM notifications
WHERE id = $1
RETURNING is_read;
`
	qCountUnread = `
SELECT COUNT(*) FROM notifications
WHERE user_id = $1 AND NOT is_read;
`
	qListPushPending = `
SELECT ` + notificationColumns + `
FROM notifications n
JOIN notification_types t ON t.id = n.type_id
WHERE NOT n.push_sent AND t.category = ANY($1) AND n.created_at < $2
ORDER BY n.created_at ASC, n.id ASC
LIMIT $3;
`
	qUpsertType = `
INSERT INTO notification_types (category, template, policy)
VALUES ($1, $2, $3)
ON CONFLICT (category) DO UPDATE
SET template = EXCLUDED.template, policy = EXCLUDED.policy, updated_at = now()
RETURNING id;
`
)

func (s *PostgresStorage) Create(ctx context.Context, n *Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if err := pg.Conn(ctx, s.pool).QueryRow(ctx, qInsert,
		n.UserID,
		n.TypeID,
		n.Content,
		n.TargetType,
		n.TargetID,
		n.CreatedAt,
	).Scan(&n.ID); err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return errors.Join(ErrNotFound, err)
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Get(ctx context.Context, id int64) (Notification, error) {
	n, err := scanNotification(pg.Conn(ctx, s.pool).QueryRow(ctx, qGet, id))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Notification{}, ErrNotificationNotFound
		}
		return Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *PostgresStorage) ListPage(ctx context.Context, userID uuid.UUID, beforeID int64, limit int) ([]Notification, error) {
	rows, err := pg.Conn(ctx, s.pool).Query(ctx, qListPage, userID, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	return collectNotifications(rows, limit)
}

func (s *PostgresStorage) ListSince(ctx context.Context, userID uuid.UUID, cursor Cursor, limit int) ([]Notification, error) {
	rows, err := pg.Conn(ctx, s.pool).Query(ctx, qListSince, userID, cursor.CreatedAt, cursor.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications since cursor: %w", err)
	}
	return collectNotifications(rows, limit)
}

func (s *PostgresStorage) MarkRead(ctx context.Context, id int64) (bool, error) {
	return s.setFlag(ctx, qMarkRead, id)
}

func (s *PostgresStorage) MarkPushSent(ctx context.Context, id int64) (bool, error) {
	return s.setFlag(ctx, qMarkPushSent, id)
}

// setFlag runs a conditional update and tells "already set" apart from "missing".
func (s *PostgresStorage) setFlag(ctx context.Context, query string, id int64) (bool, error) {
	q := pg.Conn(ctx, s.pool)
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("update notification: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := q.QueryRow(ctx, qExists, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check notification: %w", err)
	}
	if !exists {
		return false, ErrNotificationNotFound
	}
	return false, nil
}

func (s *PostgresStorage) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := pg.Conn(ctx, s.pool).Exec(ctx, qMarkAllRead, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStorage) Delete(ctx context.Context, id int64) (bool, error) {
	var isRead bool
	if err := pg.Conn(ctx, s.pool).QueryRow(ctx, qDelete, id).Scan(&isRead); err != nil {
		if pg.IsNotFoundError(err) {
			return false, ErrNotificationNotFound
		}
		return false, fmt.Errorf("delete notification: %w", err)
	}
	return !isRead, nil
}

func (s *PostgresStorage) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := pg.Conn(ctx, s.pool).QueryRow(ctx, qCountUnread, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *PostgresStorage) ListPushPending(ctx context.Context, categories []Category, createdBefore time.Time, limit int) ([]Notification, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	rows, err := pg.Conn(ctx, s.pool).Query(ctx, qListPushPending, names, createdBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("query push pending notifications: %w", err)
	}
	return collectNotifications(rows, limit)
}

func (s *PostgresStorage) SyncTypes(ctx context.Context, types []NotificationType) ([]NotificationType, error) {
	out := make([]NotificationType, 0, len(types))
	q := pg.Conn(ctx, s.pool)
	for _, t := range types {
		if err := q.QueryRow(ctx, qUpsertType, t.Category, t.Template, t.Policy).Scan(&t.ID); err != nil {
			return nil, fmt.Errorf("upsert notification type %s: %w", t.Category, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.TypeID,
		&n.Category,
		&n.Content,
		&n.IsRead,
		&n.PushSent,
		&n.TargetType,
		&n.TargetID,
		&n.CreatedAt,
	)
	n.CreatedAt = n.CreatedAt.UTC()
	return n, err
}

func collectNotifications(rows pgx.Rows, capacity int) ([]Notification, error) {
	defer rows.Close()

	out := make([]Notification, 0, max(capacity, 0))
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
