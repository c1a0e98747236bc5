package dto

import (
	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/RoyceAzure/lab/laptop_store/internal/service"
	"github.com/shopspring/decimal"
)

// AddCartItemDTO 加入購物車, color 可省略
type AddCartItemDTO struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
}

type UpdateQuantityDTO struct {
	Quantity *int `json:"quantity"`
}

// StageCheckoutDTO 購物車勾選要結帳的品項 id
type StageCheckoutDTO struct {
	IDs []string `json:"ids"`
}

type PlaceOrderDTO struct {
	Shipping model.ShippingInfo `json:"shipping"`
}

// CartDTO selectedTotal 只在帶 ?selected= 時回傳
type CartDTO struct {
	Items         []model.CartLineItem `json:"items"`
	Summary       service.Summary      `json:"summary"`
	SelectedTotal *decimal.Decimal     `json:"selectedTotal,omitempty"`
}

// OrderDetailDTO 訂單明細頁, summary 為估算值
type OrderDetailDTO struct {
	Order   model.Order     `json:"order"`
	Summary service.Summary `json:"summary"`
}

// UpdateStatusDTO 外部物流狀態回寫, status 為 processing / shipped / delivered
type UpdateStatusDTO struct {
	Status string `json:"status"`
}

type HealthDTO struct {
	Status      string `json:"status"`
	Initialized bool   `json:"initialized"`
}
