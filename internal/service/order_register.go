package service

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/google/uuid"
)

type RegisterOption func(*OrderRegister)

// WithClock 測試用, 固定時間
func WithClock(now func() time.Time) RegisterOption {
	return func(r *OrderRegister) {
		r.now = now
	}
}

func WithTrackingGenerator(gen func() string) RegisterOption {
	return func(r *OrderRegister) {
		r.tracking = gen
	}
}

// OrderRegister 有效訂單與已取消訂單兩個清單, 皆依加入順序
// 不是 goroutine safe, 由 Storefront 加鎖
type OrderRegister struct {
	orders     []model.Order
	cancelled  []model.Order
	now        func() time.Time
	tracking   func() string
	lastMillis int64
}

func NewOrderRegister(orders, cancelled []model.Order, opts ...RegisterOption) *OrderRegister {
	r := &OrderRegister{
		orders:    model.CloneOrders(orders),
		cancelled: model.CloneOrders(cancelled),
		now:       time.Now,
		tracking:  randomTrackingNumber,
	}
	for _, opt := range opts {
		opt(r)
	}
	// 接續已存在的 ORD- 編號, 避免與舊訂單重複
	for _, o := range r.orders {
		if ms, err := strconv.ParseInt(strings.TrimPrefix(o.ID, "ORD-"), 10, 64); err == nil && ms > r.lastMillis {
			r.lastMillis = ms
		}
	}
	return r
}

func randomTrackingNumber() string {
	return fmt.Sprintf("TRK-%d", rand.IntN(1000000))
}

// nextOrderID ORD-<unix ms>, 同一毫秒內多次下單時往後遞增
func (r *OrderRegister) nextOrderID(at time.Time) string {
	ms := at.UnixMilli()
	if ms <= r.lastMillis {
		ms = r.lastMillis + 1
	}
	r.lastMillis = ms
	return fmt.Sprintf("ORD-%d", ms)
}

func cancelSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
}

// PlaceOrder 建立訂單並回傳副本, 總金額只在此時計算一次
// 空清單也接受, 是否允許由上層決定
func (r *OrderRegister) PlaceOrder(items []model.CartLineItem) (model.Order, error) {
	if err := model.ValidateItems(items); err != nil {
		return model.Order{}, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	now := r.now()
	order := model.Order{
		ID:             r.nextOrderID(now),
		Items:          model.CloneItems(items),
		Total:          model.SumLines(items),
		PlacedAt:       now,
		Status:         model.OrderStatusProcessing,
		TrackingNumber: r.tracking(),
	}
	r.orders = append(r.orders, order)
	return order.Clone(), nil
}

// CancelOrder 原訂單移出有效清單, 另建一筆 CANCEL- 紀錄
// 找不到時回傳 false, 不算錯誤
func (r *OrderRegister) CancelOrder(id string) (model.Order, bool) {
	i := r.indexOf(r.orders, id)
	if i < 0 {
		return model.Order{}, false
	}
	now := r.now()
	record := r.orders[i].Clone()
	record.ID = fmt.Sprintf("CANCEL-%d-%s", now.UnixMilli(), cancelSuffix())
	record.Status = model.OrderStatusCancelled
	record.PlacedAt = now

	r.cancelled = append(r.cancelled, record)
	r.orders = slices.Delete(r.orders, i, i+1)
	return record.Clone(), true
}

func (r *OrderRegister) DeleteCancelledOrder(id string) bool {
	i := r.indexOf(r.cancelled, id)
	if i < 0 {
		return false
	}
	r.cancelled = slices.Delete(r.cancelled, i, i+1)
	return true
}

// SetStatus 給外部出貨流程用, 取消必須走 CancelOrder
func (r *OrderRegister) SetStatus(id string, status model.OrderStatus) (model.OrderStatus, error) {
	if !status.Valid() || status == model.OrderStatusCancelled {
		return 0, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	i := r.indexOf(r.orders, id)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	from := r.orders[i].Status
	r.orders[i].Status = status
	return from, nil
}

func (r *OrderRegister) FindOrder(id string) (model.Order, bool) {
	i := r.indexOf(r.orders, id)
	if i < 0 {
		return model.Order{}, false
	}
	return r.orders[i].Clone(), true
}

func (r *OrderRegister) FindCancelled(id string) (model.Order, bool) {
	i := r.indexOf(r.cancelled, id)
	if i < 0 {
		return model.Order{}, false
	}
	return r.cancelled[i].Clone(), true
}

func (r *OrderRegister) Orders() []model.Order {
	return model.CloneOrders(r.orders)
}

func (r *OrderRegister) CancelledOrders() []model.Order {
	return model.CloneOrders(r.cancelled)
}

func (r *OrderRegister) indexOf(list []model.Order, id string) int {
	return slices.IndexFunc(list, func(o model.Order) bool {
		return o.ID == id
	})
}
