package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Notification
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[uuid.UUID]*Notification{}}
}

func (f *fakeRepo) Create(_ context.Context, n *Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[n.ID]; ok {
		return false, nil
	}
	cp := *n
	f.items[n.ID] = &cp
	return true, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Notification
	for _, n := range f.items {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeRepo) CountUnreadByUser(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MarkAsRead(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.items[id]
	if !ok || n.UserID != userID {
		return ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

func (f *fakeRepo) MarkAllAsRead(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for id, n := range f.items {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			delete(f.items, id)
			count++
		}
	}
	return count, nil
}

type pushed struct {
	userID uuid.UUID
	title  string
	unread int
}

type fakeRealtime struct {
	mu    sync.Mutex
	calls []pushed
}

func (f *fakeRealtime) NotifyNew(_ context.Context, userID uuid.UUID, n *NotificationResponse, unread int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pushed{userID: userID, title: n.Title, unread: unread})
	return nil
}
