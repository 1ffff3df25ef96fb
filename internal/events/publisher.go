package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/libreriarexy/libreriarexy/internal/entity"
)

// Publisher pushes order lifecycle events to Kafka. A nil Publisher (or one
// without a writer) is a no-op, so event publishing stays optional.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(writer *kafka.Writer) *Publisher {
	return &Publisher{writer: writer}
}

// PublishOrder emits one event per order mutation, e.g. order-created-<id>.
func (p *Publisher) PublishOrder(ctx context.Context, order *entity.Order, event string) error {
	if p == nil || p.writer == nil {
		return nil
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%s", event, order.ID)),
		Value: payload,
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
