package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/AmelieAvondet/tutoria/internal/infrastructure/messaging"
)

// PubSubBridge adapts the Redis client to the messaging.RedisClient
// interface so the Redis event bus can run on the same connection pool as
// the caches.
type PubSubBridge struct {
	cache *Cache
}

// NewPubSubBridge creates a new PubSubBridge.
func NewPubSubBridge(cache *Cache) *PubSubBridge {
	return &PubSubBridge{cache: cache}
}

// Publish sends a message to a Redis channel.
func (b *PubSubBridge) Publish(ctx context.Context, channel string, message interface{}) error {
	return b.cache.Publish(ctx, channel, message)
}

// Subscribe subscribes to channels and streams messages until ctx is done.
func (b *PubSubBridge) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.RedisMessage, error) {
	sub := b.cache.Subscribe(ctx, channels...)

	// Wait for the subscription to be confirmed before returning.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan messaging.RedisMessage)
	go func() {
		defer close(out)
		defer sub.Close()
		forward(ctx, sub.Channel(), out)
	}()

	return out, nil
}

// forward pumps Redis messages into out until ctx is done or the source
// channel closes. The send is guarded by ctx so the goroutine cannot stay
// blocked after the consumer stops reading.
func forward(ctx context.Context, ch <-chan *redis.Message, out chan<- messaging.RedisMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			select {
			case out <- messaging.RedisMessage{Channel: msg.Channel, Payload: msg.Payload}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Close closes the underlying Redis connection.
func (b *PubSubBridge) Close() error {
	return b.cache.Close()
}
