// Package repository contains infrastructure-backed implementations of the
// domain repository interfaces.
package repository

import (
	"context"
	"fmt"

	"ShipQuote/internal/domain/models"
	drepo "ShipQuote/internal/domain/repository"
	pkgkafka "ShipQuote/pkg/kafka"
)

// KafkaQuoteEventPublisher emits aggregation events to a Kafka topic, keyed
// by request id so events of one request land in one partition.
type KafkaQuoteEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ drepo.EventPublisher = (*KafkaQuoteEventPublisher)(nil)

// NewKafkaQuoteEventPublisher wraps a producer for the given topic.
func NewKafkaQuoteEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaQuoteEventPublisher {
	return &KafkaQuoteEventPublisher{producer: producer, topic: topic}
}

// PublishQuoteEvent publishes one aggregation outcome.
func (p *KafkaQuoteEventPublisher) PublishQuoteEvent(ctx context.Context, ev *models.QuoteEvent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(ev.RequestID), ev); err != nil {
		return fmt.Errorf("publish quote event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying producer.
func (p *KafkaQuoteEventPublisher) Close() error {
	return p.producer.Close()
}
