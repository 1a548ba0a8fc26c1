package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeCompleted EventType = "completed"
	EventTypeApproved  EventType = "approved"
	EventTypeRejected  EventType = "rejected"
	EventTypeCreated   EventType = "created"
	EventTypeReceived  EventType = "received"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeTransfer    EntityType = "transfer"
	EntityTypeLoan        EntityType = "loan"
	EntityTypeLoanPayment EntityType = "loan_payment"
	EntityTypeDocument    EntityType = "document"
)

// Event represents a push message sent to a user's connected clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "transfer.completed"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "transfer"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransferCompleted creates a transfer.completed event
func TransferCompleted(payload interface{}) Event {
	return NewEvent(EventTypeCompleted, EntityTypeTransfer, payload)
}

// TransferReceived creates a transfer.received event for the destination owner
func TransferReceived(payload interface{}) Event {
	return NewEvent(EventTypeReceived, EntityTypeTransfer, payload)
}

// LoanApproved creates a loan.approved event
func LoanApproved(payload interface{}) Event {
	return NewEvent(EventTypeApproved, EntityTypeLoan, payload)
}

// LoanRejected creates a loan.rejected event
func LoanRejected(payload interface{}) Event {
	return NewEvent(EventTypeRejected, EntityTypeLoan, payload)
}

// LoanPaymentCompleted creates a loan_payment.completed event
func LoanPaymentCompleted(payload interface{}) Event {
	return NewEvent(EventTypeCompleted, EntityTypeLoanPayment, payload)
}

// DocumentReviewed creates a document event for the given decision
func DocumentReviewed(eventType EventType, payload interface{}) Event {
	return NewEvent(eventType, EntityTypeDocument, payload)
}
