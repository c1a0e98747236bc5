package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus uint

// 0 保留給未設定, 反序列化後由 validator 擋掉
const (
	OrderStatusProcessing OrderStatus = iota + 1 // 處理中
	OrderStatusShipped                           // 已出貨
	OrderStatusDelivered                         // 已送達
	OrderStatusCancelled                         // 已取消
)

var orderStatusText = map[OrderStatus]string{
	OrderStatusProcessing: "processing",
	OrderStatusShipped:    "shipped",
	OrderStatusDelivered:  "delivered",
	OrderStatusCancelled:  "cancelled",
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for status, text := range orderStatusText {
		if text == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) String() string {
	if text, ok := orderStatusText[s]; ok {
		return text
	}
	return fmt.Sprintf("OrderStatus(%d)", uint(s))
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusText[s]
	return ok
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	text, ok := orderStatusText[s]
	if !ok {
		return nil, fmt.Errorf("invalid order status %d", uint(s))
	}
	return []byte(text), nil
}

func (s *OrderStatus) UnmarshalText(b []byte) error {
	status, err := ParseOrderStatus(string(b))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Next processing -> shipped -> delivered, 其餘沒有下一步
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case OrderStatusProcessing:
		return OrderStatusShipped, true
	case OrderStatusShipped:
		return OrderStatusDelivered, true
	default:
		return s, false
	}
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Cancellable 只有還沒送達的訂單可以取消
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusProcessing || s == OrderStatusShipped
}

// Order 下單後 Items 與 Total 不再變動, 只有 Status 會變
type Order struct {
	ID             string          `json:"id" validate:"notblank"`
	Items          []CartLineItem  `json:"items" validate:"dive"`
	Total          decimal.Decimal `json:"total" validate:"gte=0"`
	PlacedAt       time.Time       `json:"date"`
	Status         OrderStatus     `json:"status" validate:"orderstatus"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
}

func (o Order) Clone() Order {
	o.Items = CloneItems(o.Items)
	return o
}

func CloneOrders(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}

func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
