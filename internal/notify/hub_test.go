package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ignite/phishsim-monitor/internal/domain"
)

func TestHubDeliversToAllClients(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	a := hub.Register()
	b := hub.Register()
	defer hub.Unregister(a)
	defer hub.Unregister(b)

	hub.Publish(&domain.WebhookEvent{ID: 1, Kind: domain.EventClicked, Email: "a@x.com", CampaignID: "42"})

	for _, ch := range []chan []byte{a, b} {
		select {
		case msg := <-ch:
			var evt domain.WebhookEvent
			if err := json.Unmarshal(msg, &evt); err != nil {
				t.Fatalf("payload not json: %v", err)
			}
			if evt.ID != 1 || evt.Kind != domain.EventClicked {
				t.Fatalf("unexpected payload %+v", evt)
			}
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHubDropsForSlowClient(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	slow := hub.Register()
	defer hub.Unregister(slow)

	// Never read from slow: once its buffer fills, further messages are
	// dropped instead of stalling the dispatcher.
	const burst = 200
	for i := 0; i < burst; i++ {
		hub.Broadcast([]byte("x"))
	}

	// Wait for the dispatcher to work through the burst: slow's buffer
	// caps at its channel size, everything past that was dropped.
	deadline := time.Now().Add(time.Second)
	for len(slow) < cap(slow) {
		if time.Now().After(deadline) {
			t.Fatalf("slow buffered %d of %d, dispatcher appears stuck", len(slow), burst)
		}
		time.Sleep(5 * time.Millisecond)
	}
	// The remaining drops happen without any channel hand-off, so a short
	// pause is enough for the dispatcher to finish the burst.
	time.Sleep(50 * time.Millisecond)

	// A client registered after the burst still gets live messages.
	fast := hub.Register()
	defer hub.Unregister(fast)
	hub.Broadcast([]byte("after"))

	select {
	case msg := <-fast:
		if string(msg) != "after" {
			t.Fatalf("payload = %q, want %q", msg, "after")
		}
	case <-time.After(time.Second):
		t.Fatal("dispatcher stalled behind slow client")
	}
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	ch := hub.Register()
	if hub.ClientCount() != 1 {
		t.Fatalf("count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(ch)
	if hub.ClientCount() != 0 {
		t.Fatalf("count = %d, want 0", hub.ClientCount())
	}
	if _, open := <-ch; open {
		t.Fatal("channel still open after unregister")
	}

	// Double unregister is a no-op, not a double close.
	hub.Unregister(ch)
}
