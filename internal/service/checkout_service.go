package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/RoyceAzure/lab/laptop_store/internal/infra/repository/slot"
	"github.com/rs/zerolog"
)

// Checkout 結帳頁內容
type Checkout struct {
	Items   []model.CartLineItem `json:"items"`
	Summary Summary              `json:"summary"`
}

// CheckoutService 購物車勾選的品項經由 checkoutItems slot 交給結帳頁
// mu 保護交接資料: Stage 寫入, Place 讀取 -> 下單 -> 刪除 為同一段臨界區
type CheckoutService struct {
	mu         sync.Mutex
	storefront *Storefront
	repo       *slot.Repo
	logger     *zerolog.Logger
}

func NewCheckoutService(storefront *Storefront, repo *slot.Repo, logger *zerolog.Logger) *CheckoutService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CheckoutService{storefront: storefront, repo: repo, logger: logger}
}

// Stage 寫入勾選品項 (依購物車順序), 未勾選或都不在購物車內回傳 ErrEmptySelection
func (c *CheckoutService) Stage(ctx context.Context, ids []string) (Checkout, error) {
	if !c.storefront.IsInitialized() {
		return Checkout{}, ErrNotInitialized
	}
	if len(ids) == 0 {
		return Checkout{}, ErrEmptySelection
	}
	selected := c.storefront.CartItems(ids)
	if len(selected) == 0 {
		return Checkout{}, ErrEmptySelection
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.repo.Save(ctx, slot.CheckoutItemsSlot, selected); err != nil {
		return Checkout{}, err
	}
	c.logger.Debug().
		Int("items", len(selected)).
		Str("subtotal", SelectionTotal(selected, ids).String()).
		Msg("checkout staged")
	return Checkout{Items: selected, Summary: Summarize(selected, c.storefront.TaxRate())}, nil
}

func (c *CheckoutService) Load(ctx context.Context) (Checkout, error) {
	items, ok := c.repo.LoadItems(ctx, slot.CheckoutItemsSlot)
	if !ok || len(items) == 0 {
		return Checkout{}, ErrHandoffMissing
	}
	return Checkout{Items: items, Summary: Summarize(items, c.storefront.TaxRate())}, nil
}

// Place 驗證收件資料後下單, 成功後刪除 checkoutItems
// 任何驗證失敗都不會改變狀態, 同時送出的請求只有一個會下單
func (c *CheckoutService) Place(ctx context.Context, shipping model.ShippingInfo) (model.Order, error) {
	if err := model.Validate(shipping); err != nil {
		return model.Order{}, fmt.Errorf("%w: %w", ErrInvalidShipping, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	checkout, err := c.Load(ctx)
	if err != nil {
		return model.Order{}, err
	}
	order, err := c.storefront.PlaceOrder(ctx, checkout.Items)
	if err != nil {
		return model.Order{}, err
	}
	if err := c.repo.Delete(ctx, slot.CheckoutItemsSlot); err != nil {
		c.logger.Warn().Err(err).Str("order_id", order.ID).Msg("failed to clear checkout items")
	}
	c.logger.Info().
		Str("order_id", order.ID).
		Str("total", order.Total.String()).
		Int("items", order.ItemCount()).
		Msg("order placed")
	return order, nil
}
