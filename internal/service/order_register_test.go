package service

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var (
	fixedNow       = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cancelIDRegexp = regexp.MustCompile(`^CANCEL-\d+-[0-9a-z]{9}$`)
)

type OrderRegisterTestSuite struct {
	suite.Suite
	now      time.Time
	register *OrderRegister
}

func TestOrderRegisterTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRegisterTestSuite))
}

func (s *OrderRegisterTestSuite) SetupTest() {
	s.now = fixedNow
	s.register = NewOrderRegister(nil, nil,
		WithClock(func() time.Time { return s.now }),
		WithTrackingGenerator(func() string { return "TRK-123456" }),
	)
}

func (s *OrderRegisterTestSuite) TestPlaceOrder() {
	items := []model.CartLineItem{lineItem("a", 100, 2), lineItem("b", 50, 1)}
	order, err := s.register.PlaceOrder(items)
	require.NoError(s.T(), err)

	s.Equal("ORD-1717243200000", order.ID)
	s.Equal("TRK-123456", order.TrackingNumber)
	s.Equal(model.OrderStatusProcessing, order.Status)
	s.True(decimal.NewFromInt(250).Equal(order.Total))
	s.Equal(fixedNow, order.PlacedAt)

	// 快照與呼叫端互不影響
	items[0].Quantity = 99
	stored, ok := s.register.FindOrder(order.ID)
	s.True(ok)
	s.Equal(2, stored.Items[0].Quantity)
}

func (s *OrderRegisterTestSuite) TestOrderIDsUniqueWithinSameMillisecond() {
	seen := map[string]struct{}{}
	for i := 0; i < 5; i++ {
		order, err := s.register.PlaceOrder([]model.CartLineItem{lineItem("a", 1, 1)})
		require.NoError(s.T(), err)
		_, dup := seen[order.ID]
		s.False(dup, order.ID)
		seen[order.ID] = struct{}{}
	}
	s.Len(s.register.Orders(), 5)
}

func (s *OrderRegisterTestSuite) TestOrderIDContinuesFromLoaded() {
	existing := []model.Order{{ID: "ORD-1717243200005", Items: []model.CartLineItem{}, Status: model.OrderStatusShipped}}
	register := NewOrderRegister(existing, nil, WithClock(func() time.Time { return fixedNow }))
	order, err := register.PlaceOrder(nil)
	require.NoError(s.T(), err)
	s.Equal("ORD-1717243200006", order.ID)
	s.Empty(order.Items)
	s.True(decimal.Zero.Equal(order.Total))
}

func (s *OrderRegisterTestSuite) TestPlaceOrderInvalidItems() {
	_, err := s.register.PlaceOrder([]model.CartLineItem{lineItem("a", -1, 1)})
	s.True(errors.Is(err, ErrInvalidArgument))
	s.Empty(s.register.Orders())
}

func (s *OrderRegisterTestSuite) TestCancelOrder() {
	order, err := s.register.PlaceOrder([]model.CartLineItem{lineItem("a", 100, 2)})
	require.NoError(s.T(), err)

	s.now = fixedNow.Add(time.Hour)
	record, ok := s.register.CancelOrder(order.ID)
	s.True(ok)
	s.NotEqual(order.ID, record.ID)
	s.Regexp(cancelIDRegexp, record.ID)
	s.Equal(model.OrderStatusCancelled, record.Status)
	s.Equal(s.now, record.PlacedAt)
	s.True(order.Total.Equal(record.Total))
	s.Equal(order.Items, record.Items)
	s.Equal(order.TrackingNumber, record.TrackingNumber)

	s.Empty(s.register.Orders())
	s.Len(s.register.CancelledOrders(), 1)
	_, ok = s.register.FindOrder(order.ID)
	s.False(ok)
}

func (s *OrderRegisterTestSuite) TestCancelMissingNoOp() {
	_, ok := s.register.CancelOrder("ORD-404")
	s.False(ok)
	s.Empty(s.register.CancelledOrders())
}

func (s *OrderRegisterTestSuite) TestCancelThenDelete() {
	order, _ := s.register.PlaceOrder([]model.CartLineItem{lineItem("a", 100, 1)})
	record, _ := s.register.CancelOrder(order.ID)

	s.True(s.register.DeleteCancelledOrder(record.ID))
	s.False(s.register.DeleteCancelledOrder(record.ID))
	s.Empty(s.register.Orders())
	s.Empty(s.register.CancelledOrders())

	// 原 id 不會再出現
	_, ok := s.register.CancelOrder(order.ID)
	s.False(ok)
	s.Empty(s.register.Orders())
}

func (s *OrderRegisterTestSuite) TestSetStatus() {
	order, _ := s.register.PlaceOrder([]model.CartLineItem{lineItem("a", 100, 1)})

	from, err := s.register.SetStatus(order.ID, model.OrderStatusShipped)
	require.NoError(s.T(), err)
	s.Equal(model.OrderStatusProcessing, from)

	_, err = s.register.SetStatus(order.ID, model.OrderStatusCancelled)
	s.ErrorIs(err, ErrInvalidStatus)
	_, err = s.register.SetStatus(order.ID, model.OrderStatus(42))
	s.ErrorIs(err, ErrInvalidStatus)
	_, err = s.register.SetStatus("ORD-404", model.OrderStatusDelivered)
	s.ErrorIs(err, ErrOrderNotFound)

	stored, _ := s.register.FindOrder(order.ID)
	s.Equal(model.OrderStatusShipped, stored.Status)
}

func TestRandomTrackingNumber(t *testing.T) {
	re := regexp.MustCompile(`^TRK-\d{1,6}$`)
	for i := 0; i < 50; i++ {
		require.Regexp(t, re, randomTrackingNumber())
	}
}
