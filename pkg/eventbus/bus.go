package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/txhook"
)

// Event is anything published on the bus.
type Event interface {
	EventName() string
}

// HandlerFunc handles one event type.
type HandlerFunc[E Event] func(ctx context.Context, event E) error

type subscription struct {
	name string
	fn   func(ctx context.Context, event Event) error
}

// Bus is a commit-scoped publish/subscribe primitive. Publish defers delivery
// until the unit of work carried by the context commits (see txhook); handlers
// then run on their own goroutine unless the bus is synchronous.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	closed   bool
	wg       sync.WaitGroup
	sync     bool
	logger   *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger for the Bus.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSync makes handlers run inline on the publishing goroutine after commit.
func WithSync() Option {
	return func(b *Bus) { b.sync = true }
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[string][]subscription),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for events of type E.
func Subscribe[E Event](b *Bus, fn HandlerFunc[E]) {
	var zero E
	key := typeKey(zero)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[key] = append(b.handlers[key], subscription{
		name: key,
		fn: func(ctx context.Context, event Event) error {
			e, ok := event.(E)
			if !ok {
				return fmt.Errorf("%w: got %T", ErrUnexpectedEvent, event)
			}
			return fn(ctx, e)
		},
	})
}

// Publish schedules delivery of event to its subscribers once the current
// unit of work commits. Without an open unit, delivery starts immediately.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if event == nil {
		return
	}
	txhook.AfterCommit(ctx, func(ctx context.Context) {
		b.dispatch(ctx, event)
	})
}

func (b *Bus) dispatch(ctx context.Context, event Event) {
	key := typeKey(event)

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		b.logger.LogAttrs(ctx, slog.LevelWarn, "event dropped, bus is closed",
			logger.Event(event.EventName()),
			logger.Component("eventbus"),
		)
		return
	}
	subs := append([]subscription(nil), b.handlers[key]...)
	if !b.sync {
		b.wg.Add(len(subs))
	}
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	// Delivery outlives the request that produced the event.
	ctx = txhook.Detach(ctx)

	for _, sub := range subs {
		if b.sync {
			b.run(ctx, sub, event)
			continue
		}
		go func(sub subscription) {
			defer b.wg.Done()
			b.run(ctx, sub, event)
		}(sub)
	}
}

func (b *Bus) run(ctx context.Context, sub subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.LogAttrs(ctx, slog.LevelError, "event handler panicked",
				logger.Event(event.EventName()),
				slog.Any("panic", r),
				logger.Component("eventbus"),
			)
		}
	}()

	if err := sub.fn(ctx, event); err != nil {
		b.logger.LogAttrs(ctx, slog.LevelError, "event handler failed",
			logger.Event(event.EventName()),
			logger.Error(err),
			logger.Component("eventbus"),
		)
	}
}

// Wait blocks until all in-flight asynchronous handlers have returned.
func (b *Bus) Wait() {
	b.wg.Wait()
}

// Close stops accepting events and waits for in-flight handlers.
func (b *Bus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
	return nil
}

func typeKey(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
