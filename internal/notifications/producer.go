package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"boxstudio/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher delivers domain events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, event *DomainEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka event producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig(brokers []string, topic string) *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          brokers,
		Topic:            topic,
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// NewSaramaConfig builds the producer settings used for domain events
func NewSaramaConfig(config *KafkaProducerConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	// Idempotent producers require a single in-flight request
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	return saramaConfig
}

// KafkaPublisher publishes domain events to a Kafka topic
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

// NewKafkaPublisher dials the brokers and returns a ready publisher
func NewKafkaPublisher(config *KafkaProducerConfig) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, NewSaramaConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, config), nil
}

// NewKafkaPublisherWithProducer wraps an existing sync producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, config *KafkaProducerConfig) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		config:   config,
		log:      logger.GetDefault(),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *DomainEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal domain event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.config.Topic,
		Key:   sarama.StringEncoder(event.GetPartitionKey()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send domain event to Kafka: %w", err)
	}

	p.log.DebugContext(ctx, "Domain event published",
		slog.String("topic", p.config.Topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("type", string(event.Type)),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// NopPublisher drops every event; used when Kafka is disabled
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *DomainEvent) error { return nil }
func (NopPublisher) Close() error                                { return nil }

// PublishAfterCommit sends the event and logs a failure instead of returning it.
// The state change has already been committed when this runs.
func PublishAfterCommit(ctx context.Context, publisher Publisher, event *DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "Failed to publish domain event", err, map[string]interface{}{
			"type":         string(event.Type),
			"aggregate_id": event.AggregateID,
		})
	}
}
