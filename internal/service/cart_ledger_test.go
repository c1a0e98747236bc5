package service

import (
	"testing"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func lineItem(id string, price int64, qty int) model.CartLineItem {
	return model.CartLineItem{ID: id, Name: "Laptop " + id, UnitPrice: decimal.NewFromInt(price), Quantity: qty}
}

type CartLedgerTestSuite struct {
	suite.Suite
	ledger *CartLedger
}

func TestCartLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(CartLedgerTestSuite))
}

func (s *CartLedgerTestSuite) SetupTest() {
	s.ledger = NewCartLedger(nil)
}

func (s *CartLedgerTestSuite) TestAddItemSameIDIncrements() {
	for i := 1; i <= 7; i++ {
		s.ledger.AddItem(lineItem("a", 100, 99))
		s.Equal(1, s.ledger.Len())
		item, ok := s.ledger.Get("a")
		s.True(ok)
		s.Equal(i, item.Quantity)
	}
}

func (s *CartLedgerTestSuite) TestAddItemKeepsStoredFields() {
	s.ledger.AddItem(lineItem("a", 100, 1))
	changed := lineItem("a", 1, 1)
	changed.Name = "renamed"
	s.ledger.AddItem(changed)

	item, _ := s.ledger.Get("a")
	s.Equal(2, item.Quantity)
	s.Equal("Laptop a", item.Name)
	s.True(decimal.NewFromInt(100).Equal(item.UnitPrice))
}

func (s *CartLedgerTestSuite) TestAddTwiceScenario() {
	s.ledger.AddItem(lineItem("a", 100, 1))
	s.ledger.AddItem(lineItem("a", 100, 1))

	items := s.ledger.Items()
	require.Len(s.T(), items, 1)
	s.Equal("a", items[0].ID)
	s.Equal(2, items[0].Quantity)
	s.True(decimal.NewFromInt(200).Equal(s.ledger.Subtotal()))
}

func (s *CartLedgerTestSuite) TestSubtotalRecomputed() {
	s.ledger.AddItem(lineItem("a", 100, 1))
	s.ledger.AddItem(lineItem("b", 50, 1))
	s.True(decimal.NewFromInt(150).Equal(s.ledger.Subtotal()))

	s.ledger.SetQuantity("a", 3)
	s.True(decimal.NewFromInt(350).Equal(s.ledger.Subtotal()))
	s.Equal(4, s.ledger.ItemCount())

	s.ledger.RemoveItem("b")
	s.True(decimal.NewFromInt(300).Equal(s.ledger.Subtotal()))

	s.ledger.Clear()
	s.True(decimal.Zero.Equal(s.ledger.Subtotal()))
	s.Equal(0, s.ledger.ItemCount())
}

func (s *CartLedgerTestSuite) TestSetQuantityZeroEqualsRemove() {
	seed := []model.CartLineItem{lineItem("a", 100, 2), lineItem("b", 50, 1), lineItem("c", 10, 4)}

	byZero := NewCartLedger(seed)
	byZero.SetQuantity("b", 0)
	byRemove := NewCartLedger(seed)
	byRemove.RemoveItem("b")
	s.Equal(byRemove.Items(), byZero.Items())

	byNegative := NewCartLedger(seed)
	byNegative.SetQuantity("b", -3)
	s.Equal(byRemove.Items(), byNegative.Items())
}

func (s *CartLedgerTestSuite) TestMissingIDNoOp() {
	s.ledger.AddItem(lineItem("a", 100, 1))
	before := s.ledger.Items()

	s.ledger.RemoveItem("zzz")
	s.ledger.SetQuantity("zzz", 5)
	s.Equal(before, s.ledger.Items())
}

func (s *CartLedgerTestSuite) TestMergeAddsFullQuantity() {
	s.ledger.Merge([]model.CartLineItem{lineItem("x", 10, 3)})
	s.ledger.Merge([]model.CartLineItem{lineItem("x", 10, 2), lineItem("y", 5, 1)})

	x, _ := s.ledger.Get("x")
	s.Equal(5, x.Quantity)
	y, _ := s.ledger.Get("y")
	s.Equal(1, y.Quantity)
}

func (s *CartLedgerTestSuite) TestRemoveIDsKeepsOthers() {
	s.ledger.Merge([]model.CartLineItem{lineItem("a", 1, 2), lineItem("b", 1, 3), lineItem("c", 1, 4)})
	s.ledger.RemoveIDs([]string{"b", "missing"})

	items := s.ledger.Items()
	require.Len(s.T(), items, 2)
	s.Equal("a", items[0].ID)
	s.Equal(2, items[0].Quantity)
	s.Equal("c", items[1].ID)
	s.Equal(4, items[1].Quantity)

	// index 也要跟著更新
	s.ledger.AddItem(lineItem("c", 1, 1))
	c, _ := s.ledger.Get("c")
	s.Equal(5, c.Quantity)
}

func (s *CartLedgerTestSuite) TestSelectInLedgerOrder() {
	s.ledger.Merge([]model.CartLineItem{lineItem("a", 1, 1), lineItem("b", 1, 1), lineItem("c", 1, 1)})
	selected := s.ledger.Select([]string{"c", "a", "nope"})
	require.Len(s.T(), selected, 2)
	s.Equal("a", selected[0].ID)
	s.Equal("c", selected[1].ID)

	selected[0].Quantity = 100
	a, _ := s.ledger.Get("a")
	s.Equal(1, a.Quantity)
}

func (s *CartLedgerTestSuite) TestSeedWithDuplicatesMerged() {
	ledger := NewCartLedger([]model.CartLineItem{lineItem("a", 1, 1), lineItem("a", 1, 2)})
	s.Equal(1, ledger.Len())
	s.Equal(3, ledger.ItemCount())
}
