package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter the part of *kafka.Writer used by KafkaPublisher
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publish outcomes keyed by video id so one video stays on one partition
type KafkaPublisher struct {
	writer MessageWriter
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher create a KafkaPublisher
func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish write one outcome
func (p *KafkaPublisher) Publish(ctx context.Context, o Outcome) error {
	if o.OccurredAt.IsZero() {
		o.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(o.VideoID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "status", Value: []byte(o.Status)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish outcome for %s: %w", o.VideoID, err)
	}
	return nil
}

// Close flush and close the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
