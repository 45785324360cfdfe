package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TypeOrderCreated                = "order.created"
	TypeOrderUpdated                = "order.updated"
	TypeOrderDeleted                = "order.deleted"
	TypeOrderReconciliationRequired = "order.reconciliation_required"
	TypeTicketOrphanAdopted         = "ticket.orphan_adopted"
)

// Envelope is the message body written for every event.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Producer publishes reservation events to a single Kafka topic.
type Producer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		writer: writer,
		log:    log.With(zap.String("component", "event_producer"), zap.String("topic", topic)),
	}
}

// Publish writes one event keyed by key, so events of one order stay ordered.
func (p *Producer) Publish(ctx context.Context, eventType, key string, payload any) error {
	data, err := json.Marshal(Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event %s: %w", eventType, key, err)
	}

	p.log.Debug("Event published", zap.String("type", eventType), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
