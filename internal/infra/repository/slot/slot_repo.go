package slot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/RoyceAzure/lab/laptop_store/pkg/kvstore"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	CartSlot            = "cart"
	OrdersSlot          = "orders"
	CancelledOrdersSlot = "cancelledOrders"
	// CheckoutItemsSlot 購物車 -> 結帳頁的一次性交接
	CheckoutItemsSlot = "checkoutItems"
)

// State 三個常駐 slot 的內容
type State struct {
	Cart            []model.CartLineItem `json:"cart"`
	Orders          []model.Order        `json:"orders"`
	CancelledOrders []model.Order        `json:"cancelledOrders"`
}

type Repo struct {
	store  kvstore.Store
	logger *zerolog.Logger
}

func NewRepo(store kvstore.Store, logger *zerolog.Logger) *Repo {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Repo{store: store, logger: logger}
}

// Load 讀出 slot 並反序列化, check 可為 nil
// 不存在 / 壞掉的資料 / 後端錯誤 一律視為不存在, 不往上丟
func Load[T any](ctx context.Context, r *Repo, slot string, check func(T) error) (T, bool) {
	var zero T
	raw, err := r.store.Get(ctx, slot)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return zero, false
	}
	if err != nil {
		r.logger.Error().Err(err).Str("slot", slot).Msg("failed to read slot")
		return zero, false
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		r.logger.Warn().Err(err).Str("slot", slot).Msg("malformed slot data, reset to empty")
		return zero, false
	}
	if check != nil {
		if err := check(v); err != nil {
			r.logger.Warn().Err(err).Str("slot", slot).Msg("invalid slot data, reset to empty")
			return zero, false
		}
	}
	return v, true
}

func (r *Repo) LoadItems(ctx context.Context, slot string) ([]model.CartLineItem, bool) {
	items, ok := Load(ctx, r, slot, model.ValidateItems)
	if !ok || items == nil {
		return []model.CartLineItem{}, ok
	}
	splitLegacyColor(items)
	return items, true
}

func (r *Repo) LoadOrders(ctx context.Context, slot string) ([]model.Order, bool) {
	orders, ok := Load(ctx, r, slot, model.ValidateOrders)
	if !ok || orders == nil {
		return []model.Order{}, ok
	}
	for i := range orders {
		if orders[i].Items == nil {
			orders[i].Items = []model.CartLineItem{}
		}
		splitLegacyColor(orders[i].Items)
	}
	return orders, true
}

// LoadState 三個 slot 各自獨立, 一個壞掉不影響其他
func (r *Repo) LoadState(ctx context.Context) State {
	cart, _ := r.LoadItems(ctx, CartSlot)
	orders, _ := r.LoadOrders(ctx, OrdersSlot)
	cancelled, _ := r.LoadOrders(ctx, CancelledOrdersSlot)
	return State{Cart: cart, Orders: orders, CancelledOrders: cancelled}
}

func (r *Repo) Save(ctx context.Context, slot string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal slot %s: %w", slot, err)
	}
	if err := r.store.Set(ctx, slot, string(b)); err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, slot string) error {
	if err := r.store.Delete(ctx, slot); err != nil {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	return nil
}

// SaveAll 同時寫入三個 slot
func (r *Repo) SaveAll(ctx context.Context, state State) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Save(gctx, CartSlot, nonNilItems(state.Cart))
	})
	g.Go(func() error {
		return r.Save(gctx, OrdersSlot, nonNilOrders(state.Orders))
	})
	g.Go(func() error {
		return r.Save(gctx, CancelledOrdersSlot, nonNilOrders(state.CancelledOrders))
	})
	return g.Wait()
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// 舊資料沒有 color 欄位, 顏色寫在 name 尾端 "Name (Color)"
func splitLegacyColor(items []model.CartLineItem) {
	for i := range items {
		if items[i].Color != "" {
			continue
		}
		items[i].Name, items[i].Color = model.SplitVariantName(items[i].Name)
	}
}

// 空集合存成 [] 而不是 null
func nonNilItems(items []model.CartLineItem) []model.CartLineItem {
	if items == nil {
		return []model.CartLineItem{}
	}
	return items
}

func nonNilOrders(orders []model.Order) []model.Order {
	if orders == nil {
		return []model.Order{}
	}
	return orders
}
