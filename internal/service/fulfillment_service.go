package service

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
)

// FulfillmentService 出貨流程, 只能依序 processing -> shipped -> delivered
type FulfillmentService struct {
	storefront *Storefront
}

func NewFulfillmentService(storefront *Storefront) *FulfillmentService {
	return &FulfillmentService{storefront: storefront}
}

// Advance 推進到下一個狀態, 回傳更新後的訂單
func (f *FulfillmentService) Advance(ctx context.Context, orderID string) (model.Order, error) {
	return f.storefront.TransitionOrder(ctx, orderID, func(current model.OrderStatus) (model.OrderStatus, error) {
		next, ok := current.Next()
		if !ok {
			return current, fmt.Errorf("%w: %s is %s", ErrStatusTerminal, orderID, current)
		}
		return next, nil
	})
}
