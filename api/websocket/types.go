package websocket

import (
	"encoding/json"

	"github.com/0xmhha/indexer-go/events"
)

// AllEvents is the subscription wildcard meaning "every event kind".
const AllEvents events.EventType = "*"

// Message is a WebSocket envelope exchanged with a client.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribeRequest asks the client's connection to start receiving one
// event kind, or AllEvents for every kind.
type SubscribeRequest struct {
	Type events.EventType `json:"type"`
}

// UnsubscribeRequest asks the connection to stop receiving one event kind.
type UnsubscribeRequest struct {
	Type events.EventType `json:"type"`
}

// OutboundEvent is what a subscribed client actually receives: the event
// kind plus the decoded event record.
type OutboundEvent struct {
	Type events.EventType `json:"type"`
	Data interface{}      `json:"data"`
}

// ErrorMessage is sent back on a malformed or invalid client request.
type ErrorMessage struct {
	Error string `json:"error"`
}

// SuccessMessage acknowledges a subscribe/unsubscribe request.
type SuccessMessage struct {
	Message string `json:"message"`
}
