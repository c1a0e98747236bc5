package event

import (
	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/shopspring/decimal"
)

type OrderPlacedEvent struct {
	BaseEvent
	Items          []model.CartLineItem `json:"items"`
	Total          decimal.Decimal      `json:"total"`
	TrackingNumber string               `json:"trackingNumber"`
}

func NewOrderPlacedEvent(order model.Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseEvent:      *NewBaseEvent(order.ID, OrderPlacedEventName),
		Items:          model.CloneItems(order.Items),
		Total:          order.Total,
		TrackingNumber: order.TrackingNumber,
	}
}

func (e *OrderPlacedEvent) Type() EventType {
	return OrderPlacedEventName
}

// OrderCancelledEvent AggregateID 是原訂單 id, CancelledID 是新產生的取消紀錄 id
type OrderCancelledEvent struct {
	BaseEvent
	CancelledID string            `json:"cancelledId"`
	FromState   model.OrderStatus `json:"fromState"`
	Total       decimal.Decimal   `json:"total"`
}

func NewOrderCancelledEvent(orderID string, from model.OrderStatus, record model.Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseEvent:   *NewBaseEvent(orderID, OrderCancelledEventName),
		CancelledID: record.ID,
		FromState:   from,
		Total:       record.Total,
	}
}

func (e *OrderCancelledEvent) Type() EventType {
	return OrderCancelledEventName
}

type OrderStatusChangedEvent struct {
	BaseEvent
	FromState model.OrderStatus `json:"fromState"`
	ToState   model.OrderStatus `json:"toState"`
}

func NewOrderStatusChangedEvent(orderID string, from, to model.OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent: *NewBaseEvent(orderID, OrderStatusChangedEventName),
		FromState: from,
		ToState:   to,
	}
}

func (e *OrderStatusChangedEvent) Type() EventType {
	return OrderStatusChangedEventName
}
