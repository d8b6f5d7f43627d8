package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clubnotify/pkg/logger"
)

func TestPushSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	d, storage, _, push, _ := newDispatcherFixture(t)
	now := time.Now().UTC()
	user := uuid.New()

	stale := seed(t, storage, user, CategoryComment, now.Add(-10*time.Minute))
	failing := seed(t, storage, user, CategoryChatMessage, now.Add(-9*time.Minute))
	seed(t, storage, user, CategoryLike, now.Add(-10*time.Minute))
	seed(t, storage, user, CategoryComment, now)

	push.On("Send", mock.Anything, stale).Return(nil).Once()
	push.On("Send", mock.Anything, failing).Return(errors.New("gateway down")).Once()

	sweeper := NewPushSweeper(d, Config{SweepGrace: 2 * time.Minute, SweepBatchSize: 10},
		WithSweeperLogger(logger.Discard()),
		WithSweeperClock(func() time.Time { return now }),
	)

	delivered, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	push.AssertExpectations(t)

	got, err := storage.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.True(t, got.PushSent)

	got, err = storage.Get(ctx, failing.ID)
	require.NoError(t, err)
	assert.False(t, got.PushSent)
}

func TestPushSweeper_RunStopsOnCancel(t *testing.T) {
	d, _, _, _, _ := newDispatcherFixture(t)
	sweeper := NewPushSweeper(d, Config{SweepInterval: 10 * time.Millisecond, SweepGrace: time.Minute},
		WithSweeperLogger(logger.Discard()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
