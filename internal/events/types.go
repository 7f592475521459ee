// internal/events/types.go
package events

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
)

// EventType represents the type of event.
type EventType string

const (
	// Mint lifecycle
	MintCompleted EventType = "mint.completed"

	// Pricing
	PriceUpdated EventType = "price.updated"

	// Governance
	CurveClosed EventType = "curve.closed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// MintCompletedEvent is emitted after a successful mint commits.
type MintCompletedEvent struct {
	BaseEvent
	Receipt *curve.MintReceipt
}

func NewMintCompleted(receipt *curve.MintReceipt) MintCompletedEvent {
	return MintCompletedEvent{
		BaseEvent: BaseEvent{EventType: MintCompleted, EventTime: time.Now().UTC()},
		Receipt:   receipt,
	}
}

// PriceUpdatedEvent is emitted when the next-edition price is quoted.
type PriceUpdatedEvent struct {
	BaseEvent
	Collection solana.PublicKey
	Edition    uint32
	Price      uint64
}

func NewPriceUpdated(collection solana.PublicKey, edition uint32, price uint64) PriceUpdatedEvent {
	return PriceUpdatedEvent{
		BaseEvent:  BaseEvent{EventType: PriceUpdated, EventTime: time.Now().UTC()},
		Collection: collection,
		Edition:    edition,
		Price:      price,
	}
}

// CurveClosedEvent is emitted when an empty curve is destroyed.
type CurveClosedEvent struct {
	BaseEvent
	Collection solana.PublicKey
	Authority  solana.PublicKey
}

func NewCurveClosed(collection, authority solana.PublicKey) CurveClosedEvent {
	return CurveClosedEvent{
		BaseEvent:  BaseEvent{EventType: CurveClosed, EventTime: time.Now().UTC()},
		Collection: collection,
		Authority:  authority,
	}
}
