package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// publishTimeout bounds one Publish call, however many events it carries.
const publishTimeout = 2 * time.Second

// KafkaPublisher writes events to Kafka with one writer per topic.
type KafkaPublisher struct {
	writers map[string]messageWriter
	timeout time.Duration
	logger  zerolog.Logger
}

// NewKafkaWriter creates a writer for topic that only waits for the leader acknowledgment.
// A failed write is not retried.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            1,
		WriteTimeout:           publishTimeout,
	}
}

// NewKafkaPublisher creates a publisher for every topic in Topics.
func NewKafkaPublisher(brokers []string, logger zerolog.Logger) *KafkaPublisher {
	writers := make(map[string]messageWriter, len(Topics))
	for _, topic := range Topics {
		writers[topic] = NewKafkaWriter(brokers, topic)
	}
	return newKafkaPublisher(writers, logger)
}

func newKafkaPublisher(writers map[string]messageWriter, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writers: writers,
		timeout: publishTimeout,
		logger:  logger.With().Str("component", "events").Logger(),
	}
}

// Publish encodes each event as JSON and writes it keyed by Event.Key.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var errs []error
	for _, e := range events {
		writer, ok := p.writers[e.Topic]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown topic %q", e.Topic))
			continue
		}

		value, err := json.Marshal(e)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to encode %s event: %w", e.Type, err))
			continue
		}

		msg := kafka.Message{
			Key:   []byte(e.Key),
			Value: value,
			Time:  time.Now(),
		}
		if err := writer.WriteMessages(ctx, msg); err != nil {
			p.logger.Error().Err(err).Str("topic", e.Topic).Str("key", e.Key).Msg("failed to write message to kafka")
			errs = append(errs, fmt.Errorf("failed to publish %s event: %w", e.Type, err))
			continue
		}

		p.logger.Debug().Str("topic", e.Topic).Str("key", e.Key).Str("type", e.Type).Msg("event published")
	}
	return errors.Join(errs...)
}

// Close flushes and closes every writer.
func (p *KafkaPublisher) Close() error {
	var errs []error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s writer: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}
