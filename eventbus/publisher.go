// Package eventbus streams indexer domain events to an external broker so
// other services can consume them without talking to the in-process
// events.EventBus directly.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/0xmhha/indexer-go/events"
)

var (
	// ErrInvalidConfiguration is returned when a publisher is constructed
	// with a configuration that cannot produce a working connection.
	ErrInvalidConfiguration = errors.New("eventbus: invalid configuration")

	// ErrNotConnected is returned by Publish when called before Connect
	// or after a prior Close. Close itself returns nil in that case.
	ErrNotConnected = errors.New("eventbus: not connected")
)

// Publisher streams domain events to an external broker.
type Publisher interface {
	// Connect establishes the underlying broker connection.
	Connect(ctx context.Context) error

	// Publish sends a single event. Callers should treat this as
	// best-effort. The Redis publisher bounds each call by its write
	// timeout; the Kafka publisher's writer is asynchronous, so Publish
	// returns without waiting for the broker.
	Publish(ctx context.Context, event *events.DomainEvent) error

	// Close releases the broker connection.
	Close() error
}

// wireEvent is the JSON envelope published to the broker. It carries the
// event kind alongside the raw record so consumers can filter on type
// without deserializing the full payload.
type wireEvent struct {
	Type    events.EventType `json:"type"`
	Record  *json.RawMessage `json:"record"`
	NodeID  string           `json:"node_id"`
	AtEpoch int64            `json:"at_unix_nano"`
}

func encodeEvent(event *events.DomainEvent, nodeID string) ([]byte, error) {
	record, err := json.Marshal(event.Record)
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(record)

	return json.Marshal(wireEvent{
		Type:    event.Type(),
		Record:  &raw,
		NodeID:  nodeID,
		AtEpoch: event.Timestamp().UnixNano(),
	})
}
