package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const inboxKeyPrefix = "notif:citizen:"

// RedisStore keeps each citizen's notifications in a Redis list with a TTL.
// Notifications are transient delivery artifacts; the durable record of a
// transfer is the registry itself.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Push(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	key := inboxKey(notification.CitizenID)
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, payload)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

func (s *RedisStore) ListByCitizen(ctx context.Context, citizenID int64) ([]Notification, error) {
	raw, err := s.client.LRange(ctx, inboxKey(citizenID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	notifications := make([]Notification, 0, len(raw))
	for _, item := range raw {
		var notification Notification
		if err := json.Unmarshal([]byte(item), &notification); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}

func inboxKey(citizenID int64) string {
	return inboxKeyPrefix + strconv.FormatInt(citizenID, 10)
}
