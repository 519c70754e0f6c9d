package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Sink принимает закодированные события для локальных подписчиков
type Sink interface {
	Send(ctx context.Context, payload []byte) error
}

// Relay - подписчик Redis Pub/Sub, пересылающий события в локальный хаб
type Relay struct {
	redisClient *redis.Client
	channel     string
	sink        Sink
	logger      *logrus.Logger
	done        chan struct{}
}

// NewRelay создает новый Relay
func NewRelay(redisClient *redis.Client, channel string, sink Sink, logger *logrus.Logger) *Relay {
	return &Relay{
		redisClient: redisClient,
		channel:     channel,
		sink:        sink,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Start подписывается на канал и запускает горутину пересылки.
// Возвращает ошибку, если Redis не подтвердил подписку.
func (r *Relay) Start(ctx context.Context) error {
	log := r.logger.WithField("channel", r.channel)
	log.Info("Starting broadcast relay...")

	pubsub := r.redisClient.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to broadcast channel: %w", err)
	}

	go func() {
		defer close(r.done)
		defer func() { _ = pubsub.Close() }()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				log.Info("Stopping broadcast relay.")
				return
			case msg, ok := <-messages:
				if !ok {
					log.Warn("Broadcast relay subscription closed")
					return
				}
				r.forward(ctx, msg.Payload)
			}
		}
	}()
	return nil
}

// Done закрывается, когда горутина пересылки завершилась
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

func (r *Relay) forward(ctx context.Context, payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		r.logger.WithError(err).Error("Failed to unmarshal broadcast event from Redis")
		return
	}
	if ev.Name == "" {
		r.logger.Warn("Dropping broadcast event without name")
		return
	}

	if err := r.sink.Send(ctx, []byte(payload)); err != nil {
		r.logger.WithError(err).WithField("event", ev.Name).Warn("Failed to forward broadcast event")
	}
}
