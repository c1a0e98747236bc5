package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CartLineItem 購物車一行, ID 為商品 variant 的唯一鍵
type CartLineItem struct {
	ID        string          `json:"id" validate:"notblank"`
	Name      string          `json:"name"`
	Color     string          `json:"color,omitempty"`
	UnitPrice decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Image     string          `json:"image,omitempty"`
	Brand     string          `json:"brand,omitempty"`
}

func (c CartLineItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Clone 目前欄位都是值型別, 直接複製即可
func (c CartLineItem) Clone() CartLineItem {
	return c
}

func CloneItems(items []CartLineItem) []CartLineItem {
	if items == nil {
		return []CartLineItem{}
	}
	out := make([]CartLineItem, len(items))
	copy(out, items)
	return out
}

// SumLines Σ price × quantity
func SumLines(items []CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// VariantID productID + color slug, 沒有顏色就是 productID 本身
func VariantID(productID, color string) string {
	slug := slugify(color)
	if slug == "" {
		return productID
	}
	return productID + "-" + slug
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SplitVariantName 解析舊資料 "Name (Color)" 格式
// 格式不對時原樣回傳, color 為空
func SplitVariantName(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if !strings.HasSuffix(trimmed, ")") {
		return name, ""
	}
	open := strings.LastIndex(trimmed, " (")
	if open <= 0 {
		return name, ""
	}
	color := strings.TrimSpace(trimmed[open+2 : len(trimmed)-1])
	if color == "" || strings.ContainsAny(color, "()") {
		return name, ""
	}
	return strings.TrimSpace(trimmed[:open]), color
}
