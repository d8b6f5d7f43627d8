package notifications

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/pg"
)

func setupPostgres(t *testing.T) (*pgxpool.Pool, *PostgresStorage) {
	t.Helper()
	dsn := os.Getenv("PG_CONN_URL")
	if dsn == "" {
		t.Skip("PG_CONN_URL not set, skipping postgres integration test")
	}

	ctx := context.Background()
	cfg := pg.Config{
		ConnectionString:  dsn,
		MaxOpenConns:      4,
		MaxIdleConns:      1,
		HealthCheckPeriod: time.Minute,
		RetryAttempts:     1,
		RetryInterval:     time.Second,
		MigrationsPath:    "../../migrations",
		MigrationsTable:   "schema_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pg.Migrate(ctx, pool, cfg, logger.Discard()))

	return pool, NewPostgresStorage(pool)
}

func createUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `INSERT INTO users (id) VALUES ($1)`, id)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func TestPostgresStorage(t *testing.T) {
	pool, s := setupPostgres(t)
	ctx := context.Background()

	types, err := s.SyncTypes(ctx, DefaultTypes())
	require.NoError(t, err)
	registry, err := NewRegistry(types...)
	require.NoError(t, err)

	user := createUser(t, pool)
	like, err := registry.Lookup(CategoryLike)
	require.NoError(t, err)
	comment, err := registry.Lookup(CategoryComment)
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
	mk := func(nt NotificationType, offset time.Duration) Notification {
		n := Notification{
			UserID:     user,
			TypeID:     nt.ID,
			Category:   nt.Category,
			Content:    nt.Template,
			TargetType: "post",
			TargetID:   "p-1",
			CreatedAt:  base.Add(offset),
		}
		require.NoError(t, s.Create(ctx, &n))
		return n
	}
	n1 := mk(like, 0)
	n2 := mk(comment, time.Second)
	n3 := mk(like, 2*time.Second)

	t.Run("get", func(t *testing.T) {
		got, err := s.Get(ctx, n2.ID)
		require.NoError(t, err)
		assert.Equal(t, n2, got)

		_, err = s.Get(ctx, -1)
		require.ErrorIs(t, err, ErrNotificationNotFound)
	})

	t.Run("list page", func(t *testing.T) {
		rows, err := s.ListPage(ctx, user, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{n3.ID, n2.ID}, ids(rows))

		rows, err = s.ListPage(ctx, user, n2.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{n1.ID}, ids(rows))
	})

	t.Run("list since", func(t *testing.T) {
		rows, err := s.ListSince(ctx, user, n1.Cursor(), 10)
		require.NoError(t, err)
		assert.Equal(t, []int64{n2.ID, n3.ID}, ids(rows))
	})

	t.Run("push pending", func(t *testing.T) {
		rows, err := s.ListPushPending(ctx, []Category{CategoryComment}, time.Now(), 10)
		require.NoError(t, err)
		assert.Contains(t, ids(rows), n2.ID)
		assert.NotContains(t, ids(rows), n1.ID)

		changed, err := s.MarkPushSent(ctx, n2.ID)
		require.NoError(t, err)
		assert.True(t, changed)
		changed, err = s.MarkPushSent(ctx, n2.ID)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("read flags", func(t *testing.T) {
		changed, err := s.MarkRead(ctx, n1.ID)
		require.NoError(t, err)
		assert.True(t, changed)
		changed, err = s.MarkRead(ctx, n1.ID)
		require.NoError(t, err)
		assert.False(t, changed)
		_, err = s.MarkRead(ctx, -1)
		require.ErrorIs(t, err, ErrNotificationNotFound)

		count, err := s.CountUnread(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("delete", func(t *testing.T) {
		wasUnread, err := s.Delete(ctx, n3.ID)
		require.NoError(t, err)
		assert.True(t, wasUnread)
		_, err = s.Delete(ctx, n3.ID)
		require.ErrorIs(t, err, ErrNotificationNotFound)
	})

	t.Run("mark all read", func(t *testing.T) {
		n, err := s.MarkAllRead(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		count, err := s.CountUnread(ctx, user)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestPostgresStorage_TransactionRollback(t *testing.T) {
	pool, s := setupPostgres(t)
	ctx := context.Background()

	types, err := s.SyncTypes(ctx, DefaultTypes())
	require.NoError(t, err)
	registry, err := NewRegistry(types...)
	require.NoError(t, err)
	user := createUser(t, pool)

	events := &recordingPublisher{}
	svc := NewService(s, registry, stubUsers{user: {ID: user}},
		WithTransactor(pg.NewTransactor(pool, pg.WithTransactorLogger(logger.Discard()))),
		WithPublisher(events),
		WithLogger(logger.Discard()),
	)

	n, err := svc.Create(ctx, user, CategoryLike, []any{"Alice"})
	require.NoError(t, err)
	require.Len(t, events.Events(), 1)

	got, err := s.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice liked your post", got.Content)
}
