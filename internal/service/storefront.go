package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model/event"
	"github.com/RoyceAzure/lab/laptop_store/internal/infra/producer"
	"github.com/RoyceAzure/lab/laptop_store/internal/infra/repository/slot"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type StorefrontOption func(*Storefront)

func WithRegisterOptions(opts ...RegisterOption) StorefrontOption {
	return func(s *Storefront) {
		s.registerOpts = append(s.registerOpts, opts...)
	}
}

func WithTaxRate(rate decimal.Decimal) StorefrontOption {
	return func(s *Storefront) {
		s.taxRate = rate
	}
}

// Storefront 購物車與訂單的狀態管理
// Init 之前所有異動操作都回傳 ErrNotInitialized, 讀取回傳空集合
// 每次異動後把三個 slot 全部寫回
type Storefront struct {
	mu           sync.Mutex
	repo         *slot.Repo
	publisher    producer.Publisher
	logger       *zerolog.Logger
	registerOpts []RegisterOption

	initialized bool
	ledger      *CartLedger
	register    *OrderRegister
	taxRate     decimal.Decimal
}

func NewStorefront(repo *slot.Repo, publisher producer.Publisher, logger *zerolog.Logger, opts ...StorefrontOption) *Storefront {
	if publisher == nil {
		publisher = producer.NopPublisher{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Storefront{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		taxRate:   DefaultTaxRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = NewCartLedger(nil)
	s.register = NewOrderRegister(nil, nil, s.registerOpts...)
	return s
}

// Init 從 store 載入三個 slot, 只會執行一次
// 壞掉的資料會被重置為空, 不會回傳錯誤
func (s *Storefront) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state := s.repo.LoadState(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	s.ledger = NewCartLedger(state.Cart)
	s.register = NewOrderRegister(state.Orders, state.CancelledOrders, s.registerOpts...)
	s.initialized = true
	s.logger.Info().
		Int("cart_items", s.ledger.Len()).
		Int("orders", len(state.Orders)).
		Int("cancelled_orders", len(state.CancelledOrders)).
		Msg("storefront initialized")
	return nil
}

func (s *Storefront) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// mutate 加鎖執行 fn, 成功後寫回 store 並在解鎖後發事件
func (s *Storefront) mutate(ctx context.Context, fn func() ([]event.Event, error)) error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	evts, err := fn()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.persist(ctx)
	s.mu.Unlock()

	s.publish(ctx, evts)
	return nil
}

// persist 寫入失敗只記 log, 記憶體中的狀態仍為準
func (s *Storefront) persist(ctx context.Context) {
	state := slot.State{
		Cart:            s.ledger.Items(),
		Orders:          s.register.Orders(),
		CancelledOrders: s.register.CancelledOrders(),
	}
	if err := s.repo.SaveAll(context.WithoutCancel(ctx), state); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist storefront state")
	}
}

func (s *Storefront) publish(ctx context.Context, evts []event.Event) {
	if len(evts) == 0 {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), evts...); err != nil {
		s.logger.Warn().Err(err).Int("events", len(evts)).Msg("failed to publish events")
	}
}

func (s *Storefront) AddToCart(ctx context.Context, item model.CartLineItem) error {
	if err := validateNewItem(item); err != nil {
		return err
	}
	return s.mutate(ctx, func() ([]event.Event, error) {
		s.ledger.AddItem(item)
		return nil, nil
	})
}

func validateNewItem(item model.CartLineItem) error {
	item.Quantity = 1
	if err := model.Validate(item); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	return nil
}

func (s *Storefront) RemoveFromCart(ctx context.Context, id string) error {
	return s.mutate(ctx, func() ([]event.Event, error) {
		s.ledger.RemoveItem(id)
		return nil, nil
	})
}

// UpdateQuantity qty < 1 視為移除
func (s *Storefront) UpdateQuantity(ctx context.Context, id string, qty int) error {
	return s.mutate(ctx, func() ([]event.Event, error) {
		s.ledger.SetQuantity(id, qty)
		return nil, nil
	})
}

func (s *Storefront) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, func() ([]event.Event, error) {
		count := s.ledger.ItemCount()
		s.ledger.Clear()
		return []event.Event{event.NewCartClearedEvent(count)}, nil
	})
}

// PlaceOrder 以傳入品項建立訂單, 並從購物車移除相同 id 的品項
func (s *Storefront) PlaceOrder(ctx context.Context, items []model.CartLineItem) (model.Order, error) {
	if len(items) == 0 {
		return model.Order{}, ErrEmptySelection
	}
	var order model.Order
	err := s.mutate(ctx, func() ([]event.Event, error) {
		var err error
		order, err = s.placeLocked(items)
		if err != nil {
			return nil, err
		}
		return []event.Event{event.NewOrderPlacedEvent(order)}, nil
	})
	return order, err
}

// PlaceSelected 從購物車取出 ids 對應的品項下單, 取出與下單在同一把鎖內
func (s *Storefront) PlaceSelected(ctx context.Context, ids []string) (model.Order, error) {
	var order model.Order
	err := s.mutate(ctx, func() ([]event.Event, error) {
		selected := s.ledger.Select(ids)
		if len(selected) == 0 {
			return nil, ErrEmptySelection
		}
		var err error
		order, err = s.placeLocked(selected)
		if err != nil {
			return nil, err
		}
		return []event.Event{event.NewOrderPlacedEvent(order)}, nil
	})
	return order, err
}

// placeLocked 呼叫前必須持有 s.mu
func (s *Storefront) placeLocked(items []model.CartLineItem) (model.Order, error) {
	order, err := s.register.PlaceOrder(items)
	if err != nil {
		return model.Order{}, err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	s.ledger.RemoveIDs(ids)
	return order, nil
}

// CancelOrder 找不到訂單時 ok 為 false, 不算錯誤
// 已送達的訂單不可取消
func (s *Storefront) CancelOrder(ctx context.Context, id string) (model.Order, bool, error) {
	var (
		record model.Order
		found  bool
	)
	err := s.mutate(ctx, func() ([]event.Event, error) {
		order, ok := s.register.FindOrder(id)
		if !ok {
			return nil, nil
		}
		if !order.Status.Cancellable() {
			return nil, fmt.Errorf("%w: %s is %s", ErrOrderNotCancellable, id, order.Status)
		}
		record, found = s.register.CancelOrder(id)
		return []event.Event{event.NewOrderCancelledEvent(id, order.Status, record)}, nil
	})
	return record, found, err
}

func (s *Storefront) DeleteCancelledOrder(ctx context.Context, id string) error {
	return s.mutate(ctx, func() ([]event.Event, error) {
		s.register.DeleteCancelledOrder(id)
		return nil, nil
	})
}

// ReorderItems 合併進購物車, 已存在的品項加上完整數量
func (s *Storefront) ReorderItems(ctx context.Context, items []model.CartLineItem) error {
	if err := model.ValidateItems(items); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	return s.mutate(ctx, func() ([]event.Event, error) {
		s.ledger.Merge(items)
		return nil, nil
	})
}

// ReorderOrder 先找已取消, 再找有效訂單
func (s *Storefront) ReorderOrder(ctx context.Context, orderID string) error {
	return s.mutate(ctx, func() ([]event.Event, error) {
		order, ok := s.register.FindCancelled(orderID)
		if !ok {
			order, ok = s.register.FindOrder(orderID)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		s.ledger.Merge(order.Items)
		return nil, nil
	})
}

func (s *Storefront) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.OrderStatus, error) {
	var from model.OrderStatus
	_, err := s.TransitionOrder(ctx, id, func(current model.OrderStatus) (model.OrderStatus, error) {
		from = current
		return status, nil
	})
	return from, err
}

// TransitionOrder 在同一把鎖內讀出目前狀態並決定下一個狀態
func (s *Storefront) TransitionOrder(ctx context.Context, id string, next func(model.OrderStatus) (model.OrderStatus, error)) (model.Order, error) {
	var updated model.Order
	err := s.mutate(ctx, func() ([]event.Event, error) {
		order, ok := s.register.FindOrder(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		to, err := next(order.Status)
		if err != nil {
			return nil, err
		}
		from, err := s.register.SetStatus(id, to)
		if err != nil {
			return nil, err
		}
		order.Status = to
		updated = order
		if from == to {
			return nil, nil
		}
		return []event.Event{event.NewOrderStatusChangedEvent(id, from, to)}, nil
	})
	return updated, err
}

func (s *Storefront) Cart() []model.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Items()
}

func (s *Storefront) CartItem(id string) (model.CartLineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(id)
}

func (s *Storefront) CartItems(ids []string) []model.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Select(ids)
}

func (s *Storefront) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register.Orders()
}

func (s *Storefront) CancelledOrders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register.CancelledOrders()
}

func (s *Storefront) Order(id string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register.FindOrder(id)
}

func (s *Storefront) CancelledOrder(id string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register.FindCancelled(id)
}

func (s *Storefront) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Subtotal()
}

func (s *Storefront) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ItemCount()
}

func (s *Storefront) CartSummary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.ledger.Items(), s.taxRate)
}

func (s *Storefront) Snapshot() slot.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slot.State{
		Cart:            s.ledger.Items(),
		Orders:          s.register.Orders(),
		CancelledOrders: s.register.CancelledOrders(),
	}
}

func (s *Storefront) TaxRate() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taxRate
}

// SetTaxRate 設定檔熱更新時呼叫
func (s *Storefront) SetTaxRate(rate decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taxRate = rate
}
