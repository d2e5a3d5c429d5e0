// Package events publishes cart and session activity for downstream
// consumers such as analytics. Publishing is best effort.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event types emitted by the stores.
const (
	CartItemAdded       = "cart.item_added"
	CartItemRemoved     = "cart.item_removed"
	CartQuantityChanged = "cart.quantity_changed"
	CartCleared         = "cart.cleared"
	SessionLoggedIn     = "session.logged_in"
	SessionLoggedOut    = "session.logged_out"
	SessionUpdated      = "session.profile_updated"
)

// Event is one activity record.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Aggregate  string         `json:"aggregate"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(aggregate, typ string, data map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Aggregate:  aggregate,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by aggregate so one device's
// events stay ordered within a partition.
type KafkaPublisher struct {
	writer kafkaMessageWriter
}

// PublishTimeout bounds one synchronous write, including retries.
const PublishTimeout = 3 * time.Second

func NewKafka(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: newKafkaWriter(brokers, topic)}
}

// Writes are synchronous so broker failures reach the caller. One event per
// batch keeps a store mutation from waiting on the batch timer.
func newKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
		MaxAttempts:  3,
	}
}

func (k *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(&e)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()
	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Aggregate),
		Value: b,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}); err != nil {
		return fmt.Errorf("kafka write %s: %w", e.Type, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error { return k.writer.Close() }
