// Package notify fans processed webhook events out to live dashboard clients.
//
// Delivery is best-effort and unordered across subscribers: there is no
// backlog or replay, a slow client drops messages, and nothing here may ever
// block or fail the ingestion path. Clients that connect late query the
// event log for history and follow live publishes from there.
package notify

import (
	"encoding/json"
	"sync"

	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/pkg/logger"
)

// Topic is the logical channel name events are published on.
const Topic = "webhook-event"

// Publisher is the ingestion-facing contract: fire-and-forget, never blocks.
type Publisher interface {
	Publish(evt *domain.WebhookEvent)
}

// Hub distributes event payloads to all registered client channels.
type Hub struct {
	mu        sync.RWMutex
	clients   map[chan []byte]bool
	broadcast chan []byte
	done      chan struct{}
	once      sync.Once
}

// NewHub creates a hub. Call Start before publishing.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[chan []byte]bool),
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
	}
}

// Start launches the broadcast dispatcher.
func (h *Hub) Start() {
	go func() {
		for {
			select {
			case <-h.done:
				return
			case msg := <-h.broadcast:
				h.mu.RLock()
				for ch := range h.clients {
					select {
					case ch <- msg:
					default:
						// slow client, drop the message
					}
				}
				h.mu.RUnlock()
			}
		}
	}()
}

// Stop terminates the dispatcher. Registered clients are left to drain.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Publish serializes evt and queues it for broadcast. If the broadcast
// buffer is full the message is dropped rather than blocking ingestion.
func (h *Hub) Publish(evt *domain.WebhookEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		logger.Error("notify marshal failed", "event_id", evt.ID, "error", err.Error())
		return
	}
	h.Broadcast(data)
}

// Broadcast queues a pre-serialized payload for all clients.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		logger.Warn("notify broadcast buffer full, dropping event")
	}
}

// Register adds a new client and returns its receive channel.
func (h *Hub) Register() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[ch] = true
	h.mu.Unlock()
	return ch
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(ch chan []byte) {
	h.mu.Lock()
	if h.clients[ch] {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
