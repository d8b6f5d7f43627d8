package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clubnotify/pkg/eventbus"
	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/txhook"
)

type pinged struct{ N int }

func (pinged) EventName() string { return "pinged" }

type ponged struct{}

func (ponged) EventName() string { return "ponged" }

func TestBusSync(t *testing.T) {
	bus := eventbus.New(eventbus.WithSync(), eventbus.WithLogger(logger.Discard()))

	var got []int
	eventbus.Subscribe(bus, func(_ context.Context, e pinged) error {
		got = append(got, e.N)
		return nil
	})
	eventbus.Subscribe(bus, func(_ context.Context, e pinged) error {
		got = append(got, e.N*10)
		return nil
	})

	bus.Publish(context.Background(), pinged{N: 1})
	assert.Equal(t, []int{1, 10}, got)

	t.Run("other event types are not delivered", func(t *testing.T) {
		bus.Publish(context.Background(), ponged{})
		assert.Equal(t, []int{1, 10}, got)
	})
}

func TestBusDefersUntilCommit(t *testing.T) {
	bus := eventbus.New(eventbus.WithSync(), eventbus.WithLogger(logger.Discard()))

	delivered := 0
	eventbus.Subscribe(bus, func(context.Context, pinged) error {
		delivered++
		return nil
	})

	t.Run("commit", func(t *testing.T) {
		err := txhook.LocalTransactor{}.WithTx(context.Background(), func(ctx context.Context) error {
			bus.Publish(ctx, pinged{})
			assert.Equal(t, 0, delivered)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, delivered)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := txhook.LocalTransactor{}.WithTx(context.Background(), func(ctx context.Context) error {
			bus.Publish(ctx, pinged{})
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, delivered)
	})
}

func TestBusAsync(t *testing.T) {
	bus := eventbus.New(eventbus.WithLogger(logger.Discard()))

	var (
		mu  sync.Mutex
		sum int
	)
	eventbus.Subscribe(bus, func(_ context.Context, e pinged) error {
		mu.Lock()
		defer mu.Unlock()
		sum += e.N
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	var ctxErr atomic.Value
	eventbus.Subscribe(bus, func(ctx context.Context, _ pinged) error {
		if err := ctx.Err(); err != nil {
			ctxErr.Store(err)
		}
		return nil
	})

	for i := 1; i <= 10; i++ {
		bus.Publish(ctx, pinged{N: i})
	}
	cancel()
	bus.Wait()

	assert.Equal(t, 55, sum)
	assert.Nil(t, ctxErr.Load(), "handlers must not observe publisher cancellation")
}

func TestBusHandlerFailures(t *testing.T) {
	bus := eventbus.New(eventbus.WithSync(), eventbus.WithLogger(logger.Discard()))

	reached := false
	eventbus.Subscribe(bus, func(context.Context, pinged) error {
		panic("handler exploded")
	})
	eventbus.Subscribe(bus, func(context.Context, pinged) error {
		return errors.New("handler failed")
	})
	eventbus.Subscribe(bus, func(context.Context, pinged) error {
		reached = true
		return nil
	})

	assert.NotPanics(t, func() { bus.Publish(context.Background(), pinged{}) })
	assert.True(t, reached)
}

func TestBusClose(t *testing.T) {
	bus := eventbus.New(eventbus.WithLogger(logger.Discard()))

	var calls atomic.Int32
	eventbus.Subscribe(bus, func(context.Context, pinged) error {
		calls.Add(1)
		return nil
	})

	bus.Publish(context.Background(), pinged{})
	require.NoError(t, bus.Close())
	assert.Equal(t, int32(1), calls.Load())

	bus.Publish(context.Background(), pinged{})
	bus.Wait()
	assert.Equal(t, int32(1), calls.Load())
}
