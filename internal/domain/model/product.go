package model

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

type Brand struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Laptop 型錄商品 (mock 資料), stock/rating 只做顯示
type Laptop struct {
	ID          string          `json:"id" yaml:"id" validate:"notblank"`
	Brand       string          `json:"brand" yaml:"brand" validate:"notblank"`
	Name        string          `json:"name" yaml:"name" validate:"notblank"`
	Price       decimal.Decimal `json:"price" yaml:"price" validate:"gte=0"`
	Specs       []string        `json:"specs" yaml:"specs"`
	Image       string          `json:"image" yaml:"image"`
	Description string          `json:"description" yaml:"description"`
	Colors      []string        `json:"colors,omitempty" yaml:"colors"`
	Stock       int             `json:"stock,omitempty" yaml:"stock"`
	Rating      float64         `json:"rating,omitempty" yaml:"rating"`
}

// HasColor 沒有宣告顏色的商品不接受任何顏色
func (l Laptop) HasColor(color string) bool {
	return slices.ContainsFunc(l.Colors, func(c string) bool {
		return strings.EqualFold(c, color)
	})
}

// LineItem 轉成購物車一行, quantity 固定 1
func (l Laptop) LineItem(color string) CartLineItem {
	return CartLineItem{
		ID:        VariantID(l.ID, color),
		Name:      l.Name,
		Color:     color,
		UnitPrice: l.Price,
		Quantity:  1,
		Image:     l.Image,
		Brand:     l.Brand,
	}
}
