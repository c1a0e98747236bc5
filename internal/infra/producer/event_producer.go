package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model/event"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
)

// Publisher 發布領域事件, 呼叫端只記 log 不回滾狀態
type Publisher interface {
	Publish(ctx context.Context, evts ...event.Event) error
	Close() error
}

// MessageWriter *kafka.Writer 的子集, 測試時可替換
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
}

type EventProducer struct {
	writer MessageWriter
	cb     *gobreaker.CircuitBreaker
	logger *zerolog.Logger
}

var _ Publisher = (*EventProducer)(nil)

func NewEventProducer(writer MessageWriter, logger *zerolog.Logger) *EventProducer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	settings := gobreaker.Settings{
		Name:        "EventProducer",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().
				Str("name", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	return &EventProducer{
		writer: writer,
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: logger,
	}
}

func (p *EventProducer) Publish(ctx context.Context, evts ...event.Event) error {
	if len(evts) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(evts))
	for _, evt := range evts {
		msg, err := convertToMessage(evt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	_, err := ExecuteWithBreaker(p.cb, func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msgs...)
	})
	if err != nil {
		return fmt.Errorf("publish %d events: %w", len(msgs), err)
	}
	return nil
}

func (p *EventProducer) State() gobreaker.State {
	return p.cb.State()
}

func (p *EventProducer) Close() error {
	return p.writer.Close()
}

// key 用 aggregate id, 同一張訂單的事件會進同一個 partition
func convertToMessage(evt event.Event) (kafka.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event %s: %w", evt.Type(), err)
	}
	return kafka.Message{
		Key:   []byte(evt.GetAggregateID()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type())},
			{Key: "event_id", Value: []byte(evt.GetID())},
		},
	}, nil
}

func ExecuteWithBreaker[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return *new(T), err
	}
	return res.(T), nil
}

// NopPublisher KAFKA_BROKERS 沒設定時使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...event.Event) error { return nil }

func (NopPublisher) Close() error { return nil }
