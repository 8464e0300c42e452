// C:\Users\wasab\OneDrive\デスクトップ\PORTION\events\events.go

// Package events は書き込み成功後にドメインイベントを発行します。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	OrderCreated = "OrderCreated"
	RationAdded  = "RationAdded"
)

type Envelope struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
	Close() error
}

func newEnvelope(eventType string, payload interface{}) Envelope {
	return Envelope{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Nop は全てのイベントを破棄します。
type Nop struct{}

func (Nop) Publish(context.Context, string, string, interface{}) error { return nil }
func (Nop) Close() error                                              { return nil }

// Recorder はイベントをメモリ上に保持します。
type Recorder struct {
	mu     sync.Mutex
	Events []Envelope
}

func (r *Recorder) Publish(_ context.Context, eventType, _ string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, newEnvelope(eventType, payload))
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types は記録したイベント種別を順に返します。
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.EventType
	}
	return out
}

// Kafka はJSONを1つのトピックに書き込みます。キーで所有者ごとの順序を保ちます。
type Kafka struct {
	writer *kafka.Writer
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}}
}

func (k *Kafka) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	value, err := json.Marshal(newEnvelope(eventType, payload))
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
