package producer

import (
	"context"
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

// NewKafkaLogWriter 非同步寫入, log 不能卡住 request
func NewKafkaLogWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		MaxAttempts:            3,
		Async:                  true,
		AllowAutoTopicCreation: true,
	}
}

// LogWriter 讓 zerolog 的輸出同時送到 kafka
// key 用遞增序號, 讓 log 平均分散到各 partition
type LogWriter struct {
	w       MessageWriter
	seq     atomic.Uint64
	timeout time.Duration
}

func NewLogWriter(w MessageWriter) *LogWriter {
	return &LogWriter{w: w, timeout: 5 * time.Second}
}

func (l *LogWriter) Write(p []byte) (int, error) {
	// zerolog 會重複使用 buffer
	value := make([]byte, len(p))
	copy(value, p)

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, l.seq.Add(1))

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	if err := l.w.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (l *LogWriter) Close() error {
	return l.w.Close()
}
