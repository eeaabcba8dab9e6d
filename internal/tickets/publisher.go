package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticketly/internal/shared/faults"
	"ticketly/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketCreatedEvent is the outbound message announcing a persisted
// ticket to downstream consumers.
type TicketCreatedEvent struct {
	TicketID  uuid.UUID       `json:"ticket_id"`
	EventID   uuid.UUID       `json:"event_id"`
	UserID    uuid.UUID       `json:"user_id"`
	SeatID    *uuid.UUID      `json:"seat_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	QRCode    string          `json:"qr_code"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventPublisher defines the contract for announcing ticket creation
type EventPublisher interface {
	PublishTicketCreated(ctx context.Context, event *TicketCreatedEvent) error
	Close() error
}

// KafkaPublisherConfig contains configuration for the Kafka publisher
type KafkaPublisherConfig struct {
	Brokers  []string
	Topic    string
	RetryMax int
	Timeout  time.Duration
}

// KafkaEventPublisher publishes TicketCreated events to Kafka. Delivery
// is at-least-once: the broker client retries internally, but a failure
// after the ticket row committed is surfaced, not reconciled.
type KafkaEventPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaEventPublisher creates a new Kafka publisher
func NewKafkaEventPublisher(cfg *KafkaPublisherConfig, log *logger.Logger) (*KafkaEventPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll // Wait for all in-sync replicas
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = cfg.Timeout
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioner keeps all tickets of one event on one partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer: producer,
		topic:    cfg.Topic,
		log:      log.WithComponent("ticket_publisher"),
	}, nil
}

// PublishTicketCreated publishes a single TicketCreated event
func (p *KafkaEventPublisher) PublishTicketCreated(ctx context.Context, event *TicketCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return faults.Wrap(faults.KindPublishFailure, err, "marshal ticket created event")
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.EventID.String()),
		Value:     sarama.ByteEncoder(payload),
		Headers:   p.createHeaders(event),
		Timestamp: event.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return faults.Wrap(faults.KindPublishFailure, err, "publish ticket %s", event.TicketID)
	}

	p.log.DebugContext(ctx, "ticket created event published",
		"ticket_id", event.TicketID.String(),
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

// createHeaders creates Kafka headers for the event
func (p *KafkaEventPublisher) createHeaders(event *TicketCreatedEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte("ticket.created")},
		{Key: []byte("ticket_id"), Value: []byte(event.TicketID.String())},
		{Key: []byte("event_id"), Value: []byte(event.EventID.String())},
		{Key: []byte("producer"), Value: []byte("ticketly")},
		{Key: []byte("created_at"), Value: []byte(event.CreatedAt.Format(time.RFC3339))},
	}
}

// Close closes the Kafka producer
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}
