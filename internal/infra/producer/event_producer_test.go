package producer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model/event"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestEventProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewEventProducer(w, nil)

	order := model.Order{
		ID:     "ORD-1",
		Items:  []model.CartLineItem{{ID: "apple-1", UnitPrice: decimal.NewFromInt(1599), Quantity: 1}},
		Total:  decimal.NewFromInt(1599),
		Status: model.OrderStatusProcessing,
	}
	err := p.Publish(context.Background(),
		event.NewOrderPlacedEvent(order),
		event.NewOrderStatusChangedEvent("ORD-1", model.OrderStatusProcessing, model.OrderStatusShipped),
	)
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)

	require.Equal(t, "ORD-1", string(w.msgs[0].Key))
	require.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	require.Equal(t, string(event.OrderPlacedEventName), string(w.msgs[0].Headers[0].Value))

	var placed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &placed))
	require.Equal(t, "ORD-1", placed["aggregateId"])
	require.Equal(t, "OrderPlaced", placed["eventType"])

	var changed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &changed))
	require.Equal(t, "processing", changed["fromState"])
	require.Equal(t, "shipped", changed["toState"])
}

func TestEventProducer_NoEvents(t *testing.T) {
	w := &fakeWriter{err: errors.New("must not be called")}
	p := NewEventProducer(w, nil)
	require.NoError(t, p.Publish(context.Background()))
}

func TestEventProducer_BreakerOpens(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewEventProducer(w, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := p.Publish(ctx, event.NewCartClearedEvent(1))
		require.Error(t, err)
		require.False(t, errors.Is(err, gobreaker.ErrOpenState))
	}
	require.Equal(t, gobreaker.StateOpen, p.State())

	err := p.Publish(ctx, event.NewCartClearedEvent(1))
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	require.NoError(t, p.Publish(context.Background(), event.NewCartClearedEvent(0)))
	require.NoError(t, p.Close())
}
