package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/RoyceAzure/lab/laptop_store/internal/infra/repository/slot"
	"github.com/RoyceAzure/lab/laptop_store/pkg/kvstore"
	"github.com/RoyceAzure/lab/laptop_store/pkg/kvstore/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var validShipping = model.ShippingInfo{FirstName: "Royce", LastName: "Wu", Address: "No. 1, Taipei"}

type CheckoutServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *memory.MemoryStore
	storefront *Storefront
	checkout   *CheckoutService
}

func TestCheckoutServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceTestSuite))
}

func (s *CheckoutServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewMemoryStore()
	repo := slot.NewRepo(s.store, nil)
	s.storefront = NewStorefront(repo, nil, nil)
	require.NoError(s.T(), s.storefront.Init(s.ctx))
	s.checkout = NewCheckoutService(s.storefront, repo, nil)

	require.NoError(s.T(), s.storefront.ReorderItems(s.ctx, []model.CartLineItem{
		lineItem("a", 100, 2), lineItem("b", 50, 1), lineItem("c", 10, 1),
	}))
}

func (s *CheckoutServiceTestSuite) TestStageEmptySelection() {
	_, err := s.checkout.Stage(s.ctx, nil)
	s.ErrorIs(err, ErrEmptySelection)
	_, err = s.checkout.Stage(s.ctx, []string{"zzz"})
	s.ErrorIs(err, ErrEmptySelection)

	_, err = s.store.Get(s.ctx, slot.CheckoutItemsSlot)
	s.ErrorIs(err, kvstore.ErrKeyNotFound)
}

func (s *CheckoutServiceTestSuite) TestStageAndLoad() {
	staged, err := s.checkout.Stage(s.ctx, []string{"c", "a"})
	require.NoError(s.T(), err)
	require.Len(s.T(), staged.Items, 2)
	s.Equal("a", staged.Items[0].ID)
	s.Equal("c", staged.Items[1].ID)

	loaded, err := s.checkout.Load(s.ctx)
	require.NoError(s.T(), err)
	s.Equal(3, loaded.Summary.ItemCount)
	s.Equal("210", loaded.Summary.Subtotal.String())
	s.Equal("21", loaded.Summary.Tax.String())
	s.Equal("231", loaded.Summary.Total.String())
	s.True(loaded.Summary.Shipping.IsZero())

	// 只是交接, 購物車不變
	s.Len(s.storefront.Cart(), 3)
}

func (s *CheckoutServiceTestSuite) TestLoadMissing() {
	_, err := s.checkout.Load(s.ctx)
	s.ErrorIs(err, ErrHandoffMissing)

	require.NoError(s.T(), s.store.Set(s.ctx, slot.CheckoutItemsSlot, "garbage"))
	_, err = s.checkout.Load(s.ctx)
	s.ErrorIs(err, ErrHandoffMissing)

	require.NoError(s.T(), s.store.Set(s.ctx, slot.CheckoutItemsSlot, "[]"))
	_, err = s.checkout.Load(s.ctx)
	s.ErrorIs(err, ErrHandoffMissing)
}

func (s *CheckoutServiceTestSuite) TestPlace() {
	_, err := s.checkout.Stage(s.ctx, []string{"a"})
	require.NoError(s.T(), err)

	order, err := s.checkout.Place(s.ctx, validShipping)
	require.NoError(s.T(), err)
	s.True(decimal.NewFromInt(200).Equal(order.Total))

	cart := s.storefront.Cart()
	require.Len(s.T(), cart, 2)
	s.Equal("b", cart[0].ID)
	s.Equal("c", cart[1].ID)
	s.Len(s.storefront.Orders(), 1)

	// 交接資料只能用一次
	_, err = s.checkout.Load(s.ctx)
	s.ErrorIs(err, ErrHandoffMissing)
	_, err = s.checkout.Place(s.ctx, validShipping)
	s.ErrorIs(err, ErrHandoffMissing)
}

func (s *CheckoutServiceTestSuite) TestPlaceInvalidShipping() {
	_, err := s.checkout.Stage(s.ctx, []string{"a"})
	require.NoError(s.T(), err)

	_, err = s.checkout.Place(s.ctx, model.ShippingInfo{FirstName: "Royce", LastName: "", Address: "  "})
	s.ErrorIs(err, ErrInvalidShipping)
	var verr *model.ValidationError
	s.True(errors.As(err, &verr))
	s.Len(verr.Fields, 2)

	// 沒有任何狀態改變
	s.Empty(s.storefront.Orders())
	s.Len(s.storefront.Cart(), 3)
	_, err = s.checkout.Load(s.ctx)
	s.NoError(err)
}

func (s *CheckoutServiceTestSuite) TestPlaceWithoutHandoff() {
	_, err := s.checkout.Place(s.ctx, validShipping)
	s.ErrorIs(err, ErrHandoffMissing)
	s.Empty(s.storefront.Orders())
}

// 重複送出: 同一份交接資料只會成立一張訂單
func (s *CheckoutServiceTestSuite) TestConcurrentPlaceCreatesOneOrder() {
	_, err := s.checkout.Stage(s.ctx, []string{"a"})
	require.NoError(s.T(), err)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		placed  int
		missing int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.checkout.Place(s.ctx, validShipping)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case errors.Is(err, ErrHandoffMissing):
				missing++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, placed)
	s.Equal(workers-1, missing)
	s.Len(s.storefront.Orders(), 1)
	s.Len(s.storefront.Cart(), 2)
}
