package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/pkg/logger"
)

// RedisBridge carries events across server replicas: Publish pushes to a
// Redis channel, Run subscribes and feeds the local hub, so every replica's
// connected clients see every event regardless of which replica ingested it.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

// NewRedisBridge creates a bridge between the Redis channel and hub.
func NewRedisBridge(client *redis.Client, channel string, hub *Hub) *RedisBridge {
	if channel == "" {
		channel = Topic
	}
	return &RedisBridge{client: client, channel: channel, hub: hub}
}

// Publish serializes evt and sends it to the Redis channel from a separate
// goroutine with a bounded timeout. Failures are logged and swallowed;
// realtime delivery never fails the webhook response.
func (b *RedisBridge) Publish(evt *domain.WebhookEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		logger.Error("bridge marshal failed", "event_id", evt.ID, "error", err.Error())
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
			logger.Error("bridge publish failed", "channel", b.channel, "error", err.Error())
		}
	}()
}

// Run subscribes to the Redis channel and forwards payloads into the hub
// until ctx is cancelled. Intended to run as a goroutine from main.
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	logger.Info("bridge subscribed", "channel", b.channel)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.hub.Broadcast([]byte(msg.Payload))
		}
	}
}
