package events

import (
	"time"

	"github.com/0xmhha/indexer-go/model"
)

// EventType mirrors model.EventKind so the bus can route on it without an
// import cycle back into model for subscribers that only care about the
// wire-level type string.
type EventType string

const (
	EventTypeCreated              EventType = EventType(model.EventCreated)
	EventTypeTransfer             EventType = EventType(model.EventTransfer)
	EventTypePhunkBought          EventType = EventType(model.EventPhunkBought)
	EventTypePhunkOffered         EventType = EventType(model.EventPhunkOffered)
	EventTypePhunkNoLongerForSale EventType = EventType(model.EventPhunkNoLongerForSale)
	EventTypePhunkBidEntered      EventType = EventType(model.EventPhunkBidEntered)
	EventTypePhunkBidWithdrawn    EventType = EventType(model.EventPhunkBidWithdrawn)
	EventTypeAuctionCreated       EventType = EventType(model.EventAuctionCreated)
	EventTypeAuctionBid           EventType = EventType(model.EventAuctionBid)
	EventTypeAuctionExtended      EventType = EventType(model.EventAuctionExtended)
	EventTypeAuctionSettled       EventType = EventType(model.EventAuctionSettled)
)

// AllEventTypes lists every event kind the bus can carry, for subscribers
// that want everything rather than a filtered subset.
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeCreated,
		EventTypeTransfer,
		EventTypePhunkBought,
		EventTypePhunkOffered,
		EventTypePhunkNoLongerForSale,
		EventTypePhunkBidEntered,
		EventTypePhunkBidWithdrawn,
		EventTypeAuctionCreated,
		EventTypeAuctionBid,
		EventTypeAuctionExtended,
		EventTypeAuctionSettled,
	}
}

// Event is the base interface the bus broadcasts. DomainEvent is the only
// implementation; it wraps a model.Event so the pipeline can publish
// directly without a translation layer at every call site.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// DomainEvent adapts a pipeline-produced model.Event to the bus's Event
// interface.
type DomainEvent struct {
	Record    *model.Event
	CreatedAt time.Time
}

// NewDomainEvent wraps a model.Event for publication on the bus.
func NewDomainEvent(e *model.Event) *DomainEvent {
	return &DomainEvent{Record: e, CreatedAt: time.Now()}
}

// Type implements Event.
func (e *DomainEvent) Type() EventType {
	return EventType(e.Record.Kind)
}

// Timestamp implements Event.
func (e *DomainEvent) Timestamp() time.Time {
	return e.CreatedAt
}
