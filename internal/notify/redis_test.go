package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/phishsim-monitor/internal/domain"
)

func TestBridgeRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	bridge := NewRedisBridge(client, "", hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)

	// Subscription setup races with the publish below, so wait until the
	// server sees the subscriber.
	waitForSubscribers(t, client, Topic)

	ch := hub.Register()
	defer hub.Unregister(ch)

	bridge.Publish(&domain.WebhookEvent{ID: 5, Kind: domain.EventReported, Email: "a@x.com", CampaignID: "42"})

	select {
	case msg := <-ch:
		var evt domain.WebhookEvent
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("payload not json: %v", err)
		}
		if evt.ID != 5 || evt.Kind != domain.EventReported {
			t.Fatalf("unexpected payload %+v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event did not cross the bridge")
	}
}

func TestBridgeDefaultsChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	bridge := NewRedisBridge(client, "", NewHub())
	if bridge.channel != Topic {
		t.Fatalf("channel = %q, want %q", bridge.channel, Topic)
	}
}

func waitForSubscribers(t *testing.T, client *redis.Client, channel string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		res, err := client.PubSubNumSub(context.Background(), channel).Result()
		if err == nil && res[channel] > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("subscriber never appeared")
}
