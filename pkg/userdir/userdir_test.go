package userdir_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clubnotify/pkg/notifications"
	"github.com/dmitrymomot/clubnotify/pkg/userdir"
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FindByID(ctx context.Context, id uuid.UUID) (notifications.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(notifications.User), args.Error(1)
}

func TestMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	u := notifications.User{ID: uuid.New(), PushAddress: "arn:1"}
	d := userdir.NewMemoryDirectory(u)

	got, err := d.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = d.FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, notifications.ErrUserNotFound)
	require.ErrorIs(t, err, notifications.ErrNotFound)

	u.PushAddress = "arn:2"
	d.Put(u)
	got, err = d.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "arn:2", got.PushAddress)
}

func TestCachedDirectory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	u := notifications.User{ID: uuid.New(), PushAddress: "arn:1"}

	t.Run("hits are served from cache until expiry", func(t *testing.T) {
		next := &MockDirectory{}
		next.On("FindByID", mock.Anything, u.ID).Return(u, nil).Twice()
		d := userdir.NewCachedDirectory(next, userdir.WithTTL(time.Minute), userdir.WithClock(clock))

		for range 3 {
			got, err := d.FindByID(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, u, got)
		}
		next.AssertNumberOfCalls(t, "FindByID", 1)

		now = now.Add(time.Minute)
		_, err := d.FindByID(ctx, u.ID)
		require.NoError(t, err)
		next.AssertNumberOfCalls(t, "FindByID", 2)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		next := &MockDirectory{}
		missing := uuid.New()
		next.On("FindByID", mock.Anything, missing).Return(notifications.User{}, notifications.ErrUserNotFound)
		d := userdir.NewCachedDirectory(next, userdir.WithClock(clock))

		for range 2 {
			_, err := d.FindByID(ctx, missing)
			require.ErrorIs(t, err, notifications.ErrUserNotFound)
		}
		next.AssertNumberOfCalls(t, "FindByID", 2)
	})

	t.Run("invalidate forces a reload", func(t *testing.T) {
		next := &MockDirectory{}
		next.On("FindByID", mock.Anything, u.ID).Return(u, nil)
		d := userdir.NewCachedDirectory(next, userdir.WithClock(clock))

		_, _ = d.FindByID(ctx, u.ID)
		d.Invalidate(u.ID)
		_, _ = d.FindByID(ctx, u.ID)
		next.AssertNumberOfCalls(t, "FindByID", 2)
	})

	t.Run("transport errors pass through", func(t *testing.T) {
		next := &MockDirectory{}
		boom := errors.New("db down")
		next.On("FindByID", mock.Anything, u.ID).Return(notifications.User{}, boom)
		d := userdir.NewCachedDirectory(next)

		_, err := d.FindByID(ctx, u.ID)
		require.ErrorIs(t, err, boom)
	})
}
