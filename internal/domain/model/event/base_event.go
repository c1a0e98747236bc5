package event

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	OrderPlacedEventName        EventType = "OrderPlaced"
	OrderCancelledEventName     EventType = "OrderCancelled"
	OrderStatusChangedEventName EventType = "OrderStatusChanged"
	CartClearedEventName        EventType = "CartCleared"
)

type BaseEvent struct {
	EventID     string    `json:"eventId"`
	AggregateID string    `json:"aggregateId"`
	CreatedAt   time.Time `json:"createdAt"`
	EventType   EventType `json:"eventType"`
}

func NewBaseEvent(aggregateID string, eventType EventType) *BaseEvent {
	return &BaseEvent{
		EventID:     uuid.New().String(),
		AggregateID: aggregateID,
		CreatedAt:   time.Now().UTC(),
		EventType:   eventType,
	}
}

func (e *BaseEvent) GetID() string {
	return e.EventID
}

// GetAggregateID 發 kafka 時當 message key
func (e *BaseEvent) GetAggregateID() string {
	return e.AggregateID
}

type Event interface {
	Type() EventType
	GetID() string
	GetAggregateID() string
}
