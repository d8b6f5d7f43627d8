package userdir

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/clubnotify/pkg/notifications"
)

var _ notifications.UserDirectory = (*MemoryDirectory)(nil)

// MemoryDirectory is an in-memory user directory.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[uuid.UUID]notifications.User
}

// NewMemoryDirectory creates a directory seeded with users.
func NewMemoryDirectory(users ...notifications.User) *MemoryDirectory {
	d := &MemoryDirectory{users: make(map[uuid.UUID]notifications.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// Put adds or replaces a user.
func (d *MemoryDirectory) Put(u notifications.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *MemoryDirectory) FindByID(_ context.Context, id uuid.UUID) (notifications.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return notifications.User{}, notifications.ErrUserNotFound
	}
	return u, nil
}
