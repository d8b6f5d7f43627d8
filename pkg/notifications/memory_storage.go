package notifications

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage and TypeStorage.
// Suitable for development and testing.
type MemoryStorage struct {
	mu            sync.RWMutex
	nextID        int64
	notifications map[int64]Notification
	byUser        map[uuid.UUID][]int64

	nextTypeID int64
	types      map[Category]NotificationType
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[int64]Notification),
		byUser:        make(map[uuid.UUID][]int64),
		types:         make(map[Category]NotificationType),
	}
}

func (s *MemoryStorage) Create(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	n.ID = s.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	s.notifications[n.ID] = *n
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n.ID)
	return nil
}

func (s *MemoryStorage) Get(_ context.Context, id int64) (Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return Notification{}, ErrNotificationNotFound
	}
	return n, nil
}

func (s *MemoryStorage) ListPage(_ context.Context, userID uuid.UUID, beforeID int64, limit int) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	out := make([]Notification, 0, min(limit, len(ids)))
	// ids are appended in ascending order, so walk backwards for id DESC
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		if beforeID > 0 && ids[i] >= beforeID {
			continue
		}
		out = append(out, s.notifications[ids[i]])
	}
	return out, nil
}

func (s *MemoryStorage) ListSince(_ context.Context, userID uuid.UUID, cursor Cursor, limit int) ([]Notification, error) {
	s.mu.RLock()
	var out []Notification
	for _, id := range s.byUser[userID] {
		if n := s.notifications[id]; cursor.After(n) {
			out = append(out, n)
		}
	}
	s.mu.RUnlock()

	sortByCreation(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStorage) MarkRead(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return false, ErrNotificationNotFound
	}
	if n.IsRead {
		return false, nil
	}
	n.IsRead = true
	s.notifications[id] = n
	return true, nil
}

func (s *MemoryStorage) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for _, id := range s.byUser[userID] {
		n := s.notifications[id]
		if n.IsRead {
			continue
		}
		n.IsRead = true
		s.notifications[id] = n
		changed++
	}
	return changed, nil
}

func (s *MemoryStorage) MarkPushSent(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return false, ErrNotificationNotFound
	}
	if n.PushSent {
		return false, nil
	}
	n.PushSent = true
	s.notifications[id] = n
	return true, nil
}

func (s *MemoryStorage) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return false, ErrNotificationNotFound
	}
	delete(s.notifications, id)
	s.byUser[n.UserID] = slices.DeleteFunc(s.byUser[n.UserID], func(v int64) bool { return v == id })
	return !n.IsRead, nil
}

func (s *MemoryStorage) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.byUser[userID] {
		if !s.notifications[id].IsRead {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) ListPushPending(_ context.Context, categories []Category, createdBefore time.Time, limit int) ([]Notification, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	var out []Notification
	for _, n := range s.notifications {
		if n.PushSent || !n.CreatedAt.Before(createdBefore) || !slices.Contains(categories, n.Category) {
			continue
		}
		out = append(out, n)
	}
	s.mu.RUnlock()

	sortByCreation(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStorage) SyncTypes(_ context.Context, types []NotificationType) ([]NotificationType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]NotificationType, 0, len(types))
	for _, t := range types {
		if existing, ok := s.types[t.Category]; ok {
			t.ID = existing.ID
		} else {
			s.nextTypeID++
			t.ID = s.nextTypeID
		}
		s.types[t.Category] = t
		out = append(out, t)
	}
	return out, nil
}

func sortByCreation(ns []Notification) {
	slices.SortFunc(ns, func(a, b Notification) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
