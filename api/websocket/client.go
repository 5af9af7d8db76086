package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client represents one upgraded WebSocket connection and the event kinds
// it has asked to receive.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	subscriptions map[events.EventType]bool
	mu            sync.RWMutex

	logger *zap.Logger
}

// NewClient wraps conn in a Client registered against hub.
func NewClient(hub *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, 256),
		subscriptions: make(map[events.EventType]bool),
		logger:        logger,
	}
}

// IsSubscribed reports whether the client receives eventType, honoring the
// AllEvents wildcard.
func (c *Client) IsSubscribed(eventType events.EventType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions[AllEvents] || c.subscriptions[eventType]
}

// Subscribe adds eventType to the client's subscription set.
func (c *Client) Subscribe(eventType events.EventType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[eventType] = true
}

// Unsubscribe removes eventType from the client's subscription set.
func (c *Client) Unsubscribe(eventType events.EventType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, eventType)
}

// ReadPump pumps client messages into handleMessage until the connection
// closes, then unregisters from the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", zap.Error(err))
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump pumps hub-broadcast messages and keepalive pings to the peer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Error("failed to unmarshal message", zap.Error(err))
		c.sendError("invalid message format")
		return
	}

	switch msg.Type {
	case "subscribe":
		c.handleSubscribe(msg.Payload)
	case "unsubscribe":
		c.handleUnsubscribe(msg.Payload)
	case "ping":
		c.sendMessage(Message{Type: "pong"})
	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (c *Client) handleSubscribe(payload json.RawMessage) {
	var req SubscribeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.logger.Error("failed to unmarshal subscribe request", zap.Error(err))
		c.sendError("invalid subscribe request")
		return
	}
	if req.Type == "" {
		c.sendError("subscription type is required")
		return
	}

	c.Subscribe(req.Type)
	c.sendSuccess("subscribed to " + string(req.Type))
	c.logger.Info("websocket client subscribed", zap.String("type", string(req.Type)))
}

func (c *Client) handleUnsubscribe(payload json.RawMessage) {
	var req UnsubscribeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.logger.Error("failed to unmarshal unsubscribe request", zap.Error(err))
		c.sendError("invalid unsubscribe request")
		return
	}

	c.Unsubscribe(req.Type)
	c.sendSuccess("unsubscribed from " + string(req.Type))
	c.logger.Info("websocket client unsubscribed", zap.String("type", string(req.Type)))
}

func (c *Client) sendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal message", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("client send buffer full, dropping message")
	}
}

func (c *Client) sendError(errMsg string) {
	payload, _ := json.Marshal(ErrorMessage{Error: errMsg})
	c.sendMessage(Message{Type: "error", Payload: payload})
}

func (c *Client) sendSuccess(message string) {
	payload, _ := json.Marshal(SuccessMessage{Message: message})
	c.sendMessage(Message{Type: "success", Payload: payload})
}
