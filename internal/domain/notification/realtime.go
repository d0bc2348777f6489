package notification

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userEventsChannel    = "ws:user_events"
	eventNotificationNew = "notification:new"
)

// RealtimePublisher pushes a freshly stored notification to the user's open sockets
type RealtimePublisher interface {
	NotifyNew(ctx context.Context, userID uuid.UUID, notification *NotificationResponse, unreadCount int) error
}

// userEventMessage is the envelope on the ws:user_events channel
type userEventMessage struct {
	EventType        string          `json:"event_type"`
	UserID           string          `json:"user_id"`
	Payload          json.RawMessage `json:"payload"`
	SenderInstanceID string          `json:"sender_instance_id,omitempty"`
}

func newNotificationPayload(notification *NotificationResponse, unreadCount int) map[string]interface{} {
	return map[string]interface{}{
		"type": eventNotificationNew,
		"data": map[string]interface{}{
			"notification": notification,
			"unread_count": unreadCount,
		},
	}
}

// RedisPublisher fans notifications out to API instances over Redis pub/sub.
// The worker uses it; it holds no sockets itself.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher creates a pub/sub publisher; nil rdb disables publishing
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) NotifyNew(ctx context.Context, userID uuid.UUID, notification *NotificationResponse, unreadCount int) error {
	if p == nil || p.rdb == nil {
		return nil
	}
	data, err := json.Marshal(newNotificationPayload(notification, unreadCount))
	if err != nil {
		return err
	}
	msg, err := json.Marshal(userEventMessage{
		EventType: eventNotificationNew,
		UserID:    userID.String(),
		Payload:   data,
	})
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, userEventsChannel, msg).Err()
}

type wsUserSender interface {
	SendToUserJSON(userID uuid.UUID, payload any) error
}

// WSPublisher publishes notification:new events through a Hub
type WSPublisher struct {
	sender wsUserSender
}

// NewWSPublisher creates a WS-backed realtime publisher.
func NewWSPublisher(sender wsUserSender) *WSPublisher {
	return &WSPublisher{sender: sender}
}

func (p *WSPublisher) NotifyNew(ctx context.Context, userID uuid.UUID, notification *NotificationResponse, unreadCount int) error {
	if p == nil || p.sender == nil {
		return nil
	}
	return p.sender.SendToUserJSON(userID, newNotificationPayload(notification, unreadCount))
}
