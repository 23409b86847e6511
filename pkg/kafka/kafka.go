package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer writes messages to a single topic.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a producer for topic. Writes are synchronous so the caller learns about failures.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           2 * time.Second,
			AllowAutoTopicCreation: true,
		},
	}
}

// Topic returns the target topic.
func (p *Producer) Topic() string { return p.topic }

// Send publishes one message; key drives partitioning.
func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return fmt.Errorf("kafka write %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// NewReader creates a consumer group reader.
func NewReader(brokers []string, topic, groupID string, minBytes, maxBytes int, l kafka.Logger) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    minBytes,
		MaxBytes:    maxBytes,
		StartOffset: kafka.FirstOffset,
		Logger:      l,
		ErrorLogger: l,
	})
}

// ZapLoggerAdapter lets kafka-go log through zap.
type ZapLoggerAdapter struct {
	l *zap.Logger
}

// NewZapLoggerAdapter wraps l; a nil logger discards output.
func NewZapLoggerAdapter(l *zap.Logger) *ZapLoggerAdapter {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLoggerAdapter{l: l}
}

// Printf implements kafka.Logger.
func (a *ZapLoggerAdapter) Printf(format string, args ...interface{}) {
	a.l.Debug(fmt.Sprintf(format, args...), zap.String("component", "kafka"))
}
