package event

// CartClearedEvent 只在使用者手動清空時發, 下單移除品項不算
type CartClearedEvent struct {
	BaseEvent
	ItemCount int `json:"itemCount"`
}

func NewCartClearedEvent(itemCount int) *CartClearedEvent {
	return &CartClearedEvent{
		BaseEvent: *NewBaseEvent("cart", CartClearedEventName),
		ItemCount: itemCount,
	}
}

func (e *CartClearedEvent) Type() EventType {
	return CartClearedEventName
}
