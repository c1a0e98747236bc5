package service

import (
	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/shopspring/decimal"
)

// CartLedger 購物車明細, 以加入順序保存, 同一個 id 只會有一行
// 不是 goroutine safe, 由 Storefront 加鎖
type CartLedger struct {
	items []model.CartLineItem
	index map[string]int
}

func NewCartLedger(items []model.CartLineItem) *CartLedger {
	l := &CartLedger{}
	l.reset(nil)
	// 舊資料可能有重複 id, 合併數量
	l.Merge(items)
	return l
}

func (l *CartLedger) reset(items []model.CartLineItem) {
	l.items = items
	if l.items == nil {
		l.items = []model.CartLineItem{}
	}
	l.index = make(map[string]int, len(l.items))
	for i, item := range l.items {
		l.index[item.ID] = i
	}
}

// AddItem 已存在: 數量 +1, 其他欄位不動; 不存在: 以數量 1 加入
func (l *CartLedger) AddItem(item model.CartLineItem) {
	if i, ok := l.index[item.ID]; ok {
		l.items[i].Quantity++
		return
	}
	item.Quantity = 1
	l.index[item.ID] = len(l.items)
	l.items = append(l.items, item)
}

func (l *CartLedger) RemoveItem(id string) {
	if _, ok := l.index[id]; !ok {
		return
	}
	l.RemoveIDs([]string{id})
}

// SetQuantity qty < 1 等同移除, 找不到 id 不做事
func (l *CartLedger) SetQuantity(id string, qty int) {
	i, ok := l.index[id]
	if !ok {
		return
	}
	if qty < 1 {
		l.RemoveItem(id)
		return
	}
	l.items[i].Quantity = qty
}

func (l *CartLedger) Clear() {
	l.reset(nil)
}

// Merge 再次購買: 已存在加上完整數量, 不存在則整行加入
func (l *CartLedger) Merge(items []model.CartLineItem) {
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if i, ok := l.index[item.ID]; ok {
			l.items[i].Quantity += item.Quantity
			continue
		}
		l.index[item.ID] = len(l.items)
		l.items = append(l.items, item.Clone())
	}
}

// RemoveIDs 下單後移除已購買的品項, 其餘保持原順序
func (l *CartLedger) RemoveIDs(ids []string) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]model.CartLineItem, 0, len(l.items))
	for _, item := range l.items {
		if _, ok := drop[item.ID]; !ok {
			kept = append(kept, item)
		}
	}
	l.reset(kept)
}

// Select 依購物車順序取出指定 id, 不存在的 id 忽略
func (l *CartLedger) Select(ids []string) []model.CartLineItem {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := []model.CartLineItem{}
	for _, item := range l.items {
		if _, ok := want[item.ID]; ok {
			out = append(out, item.Clone())
		}
	}
	return out
}

func (l *CartLedger) Get(id string) (model.CartLineItem, bool) {
	i, ok := l.index[id]
	if !ok {
		return model.CartLineItem{}, false
	}
	return l.items[i].Clone(), true
}

func (l *CartLedger) Items() []model.CartLineItem {
	return model.CloneItems(l.items)
}

func (l *CartLedger) Len() int {
	return len(l.items)
}

// Subtotal 每次重新計算, 不快取
func (l *CartLedger) Subtotal() decimal.Decimal {
	return model.SumLines(l.items)
}

func (l *CartLedger) ItemCount() int {
	n := 0
	for _, item := range l.items {
		n += item.Quantity
	}
	return n
}
