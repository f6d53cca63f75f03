package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	core "github.com/Seeom6/Daraa-Hub-sub000/pkg/subscription"
)

// DefaultChannel is the Redis channel events are published to.
const DefaultChannel = "events:subscription"

// ErrPublishFailed wraps Redis errors returned by RedisPublisher.
var ErrPublishFailed = errors.New("failed to publish subscription event")

// RedisPublisher hands events to the notification service over Redis
// pub/sub, JSON encoded.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisPublisher publishes to DefaultChannel when channel is empty.
func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	if client == nil {
		panic("subscription: redis client is required")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev core.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Name, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

var _ core.Publisher = (*RedisPublisher)(nil)
