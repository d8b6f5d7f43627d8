package userdir

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/clubnotify/pkg/cache"
	"github.com/dmitrymomot/clubnotify/pkg/notifications"
)

var _ notifications.UserDirectory = (*CachedDirectory)(nil)

const (
	DefaultCapacity = 1024
	DefaultTTL      = 5 * time.Minute
)

// CachedDirectory caches successful lookups of another directory. Misses
// and errors are not cached.
type CachedDirectory struct {
	next  notifications.UserDirectory
	users *cache.LRUCache[uuid.UUID, notifications.User]
}

// Option configures a CachedDirectory.
type Option func(*cachedOptions)

type cachedOptions struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// WithCapacity bounds the number of cached users.
func WithCapacity(n int) Option {
	return func(o *cachedOptions) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithTTL sets how long a cached user stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(o *cachedOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock overrides the cache time source.
func WithClock(now func() time.Time) Option {
	return func(o *cachedOptions) {
		o.now = now
	}
}

// NewCachedDirectory wraps next with an LRU cache.
func NewCachedDirectory(next notifications.UserDirectory, opts ...Option) *CachedDirectory {
	o := cachedOptions{capacity: DefaultCapacity, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return &CachedDirectory{
		next:  next,
		users: cache.NewLRUCache[uuid.UUID, notifications.User](o.capacity, cache.WithTTL(o.ttl), cache.WithClock(o.now)),
	}
}

func (d *CachedDirectory) FindByID(ctx context.Context, id uuid.UUID) (notifications.User, error) {
	if u, ok := d.users.Get(id); ok {
		return u, nil
	}
	u, err := d.next.FindByID(ctx, id)
	if err != nil {
		return notifications.User{}, err
	}
	d.users.Put(id, u)
	return u, nil
}

// Invalidate drops a cached user, e.g. after its push address changed.
func (d *CachedDirectory) Invalidate(id uuid.UUID) {
	d.users.Remove(id)
}
