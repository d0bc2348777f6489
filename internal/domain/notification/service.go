package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/pkg/logger"
)

// Service handles notification logic
type Service struct {
	repo     Repository
	realtime RealtimePublisher
}

// NewService creates notification service. realtime may be nil.
func NewService(repo Repository, realtime RealtimePublisher) *Service {
	return &Service{repo: repo, realtime: realtime}
}

// Create stores a notification under id and pushes it to the user's open
// sockets. A repeated id is a no-op, so redelivered events notify once.
func (s *Service) Create(ctx context.Context, id, userID uuid.UUID, notifType Type, title, body string, data *Data) (*Notification, error) {
	n := &Notification{
		ID:        id,
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}
	n.SetData(data)

	inserted, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	if !inserted {
		logger.LogDebug(ctx, "Notification already stored", "notification_id", id.String())
		return n, nil
	}

	s.push(ctx, n)
	return n, nil
}

func (s *Service) push(ctx context.Context, n *Notification) {
	if s.realtime == nil {
		return
	}
	unread, err := s.repo.CountUnreadByUser(ctx, n.UserID)
	if err != nil {
		logger.LogWarn(ctx, "Unread count failed", "user_id", n.UserID.String(), "error", err.Error())
	}
	if err := s.realtime.NotifyNew(ctx, n.UserID, NotificationResponseFromEntity(n), unread); err != nil {
		logger.LogWarn(ctx, "Realtime push failed", "user_id", n.UserID.String(), "error", err.Error())
	}
}

// List returns notifications for user
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks one of the user's notifications as read
func (s *Service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}
