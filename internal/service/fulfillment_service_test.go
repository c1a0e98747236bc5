package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/RoyceAzure/lab/laptop_store/internal/infra/repository/slot"
	"github.com/RoyceAzure/lab/laptop_store/pkg/kvstore/memory"
	"github.com/stretchr/testify/require"
)

func TestFulfillmentService_Advance(t *testing.T) {
	ctx := context.Background()
	sf := NewStorefront(slot.NewRepo(memory.NewMemoryStore(), nil), nil, nil)
	fulfillment := NewFulfillmentService(sf)

	_, err := fulfillment.Advance(ctx, "ORD-1")
	require.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, sf.Init(ctx))
	_, err = fulfillment.Advance(ctx, "ORD-404")
	require.ErrorIs(t, err, ErrOrderNotFound)

	order, err := sf.PlaceOrder(ctx, []model.CartLineItem{lineItem("a", 100, 1)})
	require.NoError(t, err)

	updated, err := fulfillment.Advance(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusShipped, updated.Status)

	updated, err = fulfillment.Advance(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusDelivered, updated.Status)

	_, err = fulfillment.Advance(ctx, order.ID)
	require.ErrorIs(t, err, ErrStatusTerminal)

	stored, ok := sf.Order(order.ID)
	require.True(t, ok)
	require.Equal(t, model.OrderStatusDelivered, stored.Status)
}
