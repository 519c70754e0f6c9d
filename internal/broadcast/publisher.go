package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Broadcaster доставляет событие живым подписчикам
type Broadcaster interface {
	Broadcast(ctx context.Context, ev Event) error
}

// RedisPublisher публикует события в канал Redis Pub/Sub, чтобы их получили все экземпляры API
type RedisPublisher struct {
	redisClient *redis.Client
	channel     string
}

// NewRedisPublisher создает новый RedisPublisher
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
		channel:     channel,
	}
}

// Broadcast публикует событие; подтверждение доставки не ожидается
func (p *RedisPublisher) Broadcast(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast event: %w", err)
	}

	if err := p.redisClient.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish broadcast event to Redis: %w", err)
	}
	return nil
}

// FallbackPublisher публикует через primary (Redis). Если публикация не удалась,
// событие получают хотя бы зрители этого экземпляра через local.
type FallbackPublisher struct {
	primary Broadcaster
	local   Broadcaster
	logger  *logrus.Logger
}

func NewFallbackPublisher(primary, local Broadcaster, logger *logrus.Logger) *FallbackPublisher {
	return &FallbackPublisher{
		primary: primary,
		local:   local,
		logger:  logger,
	}
}

// Broadcast возвращает ошибку, только если не сработал ни один путь
func (p *FallbackPublisher) Broadcast(ctx context.Context, ev Event) error {
	err := p.primary.Broadcast(ctx, ev)
	if err == nil {
		return nil
	}

	p.logger.WithError(err).WithField("event", ev.Name).Warn("Publish failed, delivering to local subscribers only")
	if localErr := p.local.Broadcast(ctx, ev); localErr != nil {
		return errors.Join(err, localErr)
	}
	return nil
}
