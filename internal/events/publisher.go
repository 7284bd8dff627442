package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"shopora-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderCreatedEvent is emitted after a checkout commits.
type OrderCreatedEvent struct {
	OrderID    uint      `json:"order_id"`
	UserID     uint      `json:"user_id"`
	Total      int64     `json:"total"`
	ItemsCount int       `json:"items_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher returns a publisher that writes order events to the
// given topic. Messages are keyed by user id so events for one user stay
// ordered within a partition.
func NewKafkaPublisher(brokers []string, topic string) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "events"),
		zap.String("method", "PublishOrderCreated"),
	)

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.UserID), 10)),
		Value: payload,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Warn("failed to publish order event",
			zap.Uint("order_id", event.OrderID),
			zap.Error(err),
		)
		return err
	}

	log.Info("order event published", zap.Uint("order_id", event.OrderID))
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// noopPublisher is used when no brokers are configured.
type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	return nil
}

func (noopPublisher) Close() error { return nil }
