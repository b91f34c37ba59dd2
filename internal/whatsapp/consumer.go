package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"boxstudio/internal/shared/apperror"
	"boxstudio/pkg/logger"

	"github.com/IBM/sarama"
)

// StatusConsumer ingests provider callbacks relayed through Kafka
type StatusConsumer interface {
	Start(ctx context.Context, numWorkers int) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig(brokers []string, groupID, topic string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              brokers,
		GroupID:              groupID,
		Topics:               []string{topic},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

type kafkaStatusConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	service       Service
	log           *logger.Logger
	wg            sync.WaitGroup
}

func NewKafkaStatusConsumer(config *ConsumerConfig, service Service) (StatusConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaStatusConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		service:       service,
		log:           logger.GetDefault(),
	}, nil
}

func (k *kafkaStatusConsumer) Start(ctx context.Context, numWorkers int) error {
	if numWorkers < 1 {
		numWorkers = 1
	}
	k.log.Info("Starting WhatsApp status consumers", "workers", numWorkers, "topics", k.config.Topics)

	go func() {
		for err := range k.consumerGroup.Errors() {
			k.log.Error("Consumer group error", "error", err.Error())
		}
	}()

	for i := 0; i < numWorkers; i++ {
		k.wg.Add(1)
		go func(workerID int) {
			defer k.wg.Done()
			k.runWorker(ctx, workerID)
		}(i)
	}
	return nil
}

func (k *kafkaStatusConsumer) runWorker(ctx context.Context, workerID int) {
	handler := NewStatusHandler(k.service, k.config.MaxRetries, k.config.RetryBackoffDuration)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := k.consumerGroup.Consume(ctx, k.config.Topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			k.log.Warn("Error consuming status messages", "worker", workerID, "error", err.Error())
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (k *kafkaStatusConsumer) Stop() error {
	err := k.consumerGroup.Close()
	k.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	k.log.Info("WhatsApp status consumer stopped")
	return nil
}

// StatusHandler feeds each Kafka record through the same path as the HTTP callback
type StatusHandler struct {
	service    Service
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func NewStatusHandler(service Service, maxRetries int, backoff time.Duration) *StatusHandler {
	return &StatusHandler{
		service:    service,
		maxRetries: maxRetries,
		backoff:    backoff,
		log:        logger.GetDefault(),
	}
}

func (h *StatusHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *StatusHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *StatusHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			// Stop the claim without marking so the record is redelivered after the rebalance
			if err := h.Process(session.Context(), message.Value); err != nil {
				h.log.Warn("Stopping claim on unprocessed status message",
					"topic", message.Topic,
					"partition", message.Partition,
					"offset", message.Offset,
					"error", err.Error(),
				)
				return fmt.Errorf("failed to process status message at offset %d: %w", message.Offset, err)
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// Process handles one record. Malformed or rejected payloads are dropped with a
// nil error. Store failures are retried with backoff.
func (h *StatusHandler) Process(ctx context.Context, value []byte) error {
	payload, err := DecodeStatusPayload(value)
	if err != nil {
		h.log.Warn("Dropping malformed status message", "error", err.Error())
		return nil
	}

	for attempt := 0; ; attempt++ {
		_, err := h.service.RecordStatus(ctx, payload)
		if err == nil {
			return nil
		}
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil
		}
		if attempt >= h.maxRetries {
			return err
		}

		delay := h.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
