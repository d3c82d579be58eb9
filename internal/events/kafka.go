package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher sends events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

// Producer wraps a kafka.Writer bound to a single topic.
type Producer struct {
	w *kafka.Writer
}

// NewProducer creates a Kafka writer for topic. Messages with the same key
// (the recipient id) land on the same partition and keep their order.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	return p.w.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error { return p.w.Close() }
