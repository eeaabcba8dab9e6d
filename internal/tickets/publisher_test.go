package tickets

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketly/internal/shared/faults"
	"ticketly/pkg/logger"
)

func newMockPublisher(t *testing.T) (*KafkaEventPublisher, *mocks.SyncProducer) {
	t.Helper()
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	return &KafkaEventPublisher{
		producer: producer,
		topic:    "ticket-created",
		log:      logger.NewNop(),
	}, producer
}

func newCreatedEvent() *TicketCreatedEvent {
	return &TicketCreatedEvent{
		TicketID:  uuid.New(),
		EventID:   uuid.New(),
		UserID:    uuid.New(),
		Amount:    decimal.RequireFromString("50.00"),
		QRCode:    "TICKET-ABC234-0001",
		CreatedAt: time.Now().UTC(),
	}
}

func TestPublishTicketCreated(t *testing.T) {
	publisher, producer := newMockPublisher(t)
	event := newCreatedEvent()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "ticket-created", msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, event.EventID.String(), string(key))

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		var decoded TicketCreatedEvent
		require.NoError(t, json.Unmarshal(value, &decoded))
		assert.Equal(t, event.TicketID, decoded.TicketID)
		assert.Equal(t, "TICKET-ABC234-0001", decoded.QRCode)

		return nil
	})

	err := publisher.PublishTicketCreated(context.Background(), event)

	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestPublishTicketCreatedBrokerFailure(t *testing.T) {
	publisher, producer := newMockPublisher(t)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := publisher.PublishTicketCreated(context.Background(), newCreatedEvent())

	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindPublishFailure))
	require.NoError(t, publisher.Close())
}
