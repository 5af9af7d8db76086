package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/events"
)

// Hub maintains the set of active client connections and fans out events
// from the indexer's EventBus to whichever clients are subscribed to them.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *events.DomainEvent

	logger *zap.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *events.DomainEvent, 256),
		logger:     logger,
	}
}

// Run drives the hub's register/unregister/broadcast loop until the
// process exits; the caller starts this in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("websocket client registered", zap.Int("total_clients", len(h.clients)))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("websocket client unregistered", zap.Int("total_clients", len(h.clients)))

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

func (h *Hub) broadcastEvent(event *events.DomainEvent) {
	outbound := OutboundEvent{Type: event.Type(), Data: event.Record}

	payload, err := json.Marshal(outbound)
	if err != nil {
		h.logger.Error("failed to marshal outbound event", zap.Error(err))
		return
	}
	message, err := json.Marshal(Message{Type: "event", Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client := range h.clients {
		if client.IsSubscribed(event.Type()) {
			select {
			case client.send <- message:
				sent++
			default:
				h.logger.Warn("client send buffer full, dropping connection")
				close(client.send)
				delete(h.clients, client)
			}
		}
	}

	h.logger.Debug("event broadcast", zap.String("type", string(event.Type())), zap.Int("recipients", sent))
}

// BroadcastEvent enqueues a coordinator-emitted event for delivery to
// subscribed clients. Non-blocking: a full queue drops the event rather
// than stalling the publisher.
func (h *Hub) BroadcastEvent(event *events.DomainEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every client connection and drains the client set.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}

	h.logger.Info("websocket hub stopped")
}
