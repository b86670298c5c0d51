package cache

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/waste3d/learnhub-api/internal/domain"
)

// Храним не больше 50 последних уведомлений на пользователя
const notificationsCap = 50

// NotificationStore — очередь уведомлений в Redis, список на пользователя.
type NotificationStore struct {
	client *redis.Client
}

func NewNotificationStore(client *redis.Client) *NotificationStore {
	return &NotificationStore{client: client}
}

func key(userID uuid.UUID) string {
	return "notifications:" + userID.String()
}

func (s *NotificationStore) Push(ctx context.Context, userID uuid.UUID, n domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key(userID), data)
	pipe.LTrim(ctx, key(userID), 0, notificationsCap-1)
	_, err = pipe.Exec(ctx)
	return err
}

// List возвращает уведомления от новых к старым.
func (s *NotificationStore) List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	vals, err := s.client.LRange(ctx, key(userID), 0, notificationsCap-1).Result()
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(vals))
	for _, v := range vals {
		var n domain.Notification
		if json.Unmarshal([]byte(v), &n) != nil {
			continue // битую запись пропускаем
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// Dismiss удаляет одно уведомление по id.
func (s *NotificationStore) Dismiss(ctx context.Context, userID uuid.UUID, notificationID string) error {
	vals, err := s.client.LRange(ctx, key(userID), 0, notificationsCap-1).Result()
	if err != nil {
		return err
	}
	for _, v := range vals {
		var n domain.Notification
		if json.Unmarshal([]byte(v), &n) == nil && n.ID == notificationID {
			return s.client.LRem(ctx, key(userID), 1, v).Err()
		}
	}
	return nil
}

func (s *NotificationStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, key(userID)).Err()
}
