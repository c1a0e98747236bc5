package service

import (
	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate 結帳頁預估稅率 10%
var DefaultTaxRate = decimal.RequireFromString("0.10")

// Summary 結帳 / 訂單明細頁顯示用, 純估算
type Summary struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// SelectionTotal 只加總 ids 內的品項
func SelectionTotal(items []model.CartLineItem, ids []string) decimal.Decimal {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	total := decimal.Zero
	for _, item := range items {
		if _, ok := want[item.ID]; ok {
			total = total.Add(item.LineTotal())
		}
	}
	return total
}

func EstimateTax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Round(2)
}

// EstimateShipping 目前一律免運
func EstimateShipping(decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

func EstimateTotal(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Add(EstimateShipping(subtotal)).Add(EstimateTax(subtotal, rate)).Round(2)
}

func Summarize(items []model.CartLineItem, rate decimal.Decimal) Summary {
	subtotal := model.SumLines(items)
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return Summary{
		ItemCount: count,
		Subtotal:  subtotal.Round(2),
		Shipping:  EstimateShipping(subtotal),
		Tax:       EstimateTax(subtotal, rate),
		Total:     EstimateTotal(subtotal, rate),
	}
}
