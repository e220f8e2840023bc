package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"veneto-api/internal/domain"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOrder(t *testing.T) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder(domain.OrderParams{
		ID:            "o-42",
		CustomerName:  "João",
		CustomerPhone: "11988887777",
		Items:         []domain.OrderItem{{ProductID: "esfiha_carne_001", Name: "Esfiha de Carne", Quantity: 4, Price: 5}},
		TotalPrice:    20,
	})
	require.NoError(t, err)
	return o
}

func TestOrderPublisher_OrderCreated(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event OrderEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Type != TypeOrderCreated || event.OrderID != "o-42" || event.Status != domain.StatusRecebido {
			return errors.New("unexpected event payload")
		}
		if event.EventID == "" {
			return errors.New("missing event id")
		}
		return nil
	})

	publisher := NewOrderPublisher(NewProducerFromSarama(sp, zap.NewNop()), "order_events")
	require.NoError(t, publisher.OrderCreated(context.Background(), testOrder(t)))
	require.NoError(t, sp.Close())
}

func TestOrderPublisher_StatusChangedCarriesPreviousStatus(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event OrderEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Type != TypeOrderStatusChanged || event.PreviousStatus != domain.StatusRecebido || event.Status != domain.StatusEmPreparo {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	order := testOrder(t)
	order.Status = domain.StatusEmPreparo

	publisher := NewOrderPublisher(NewProducerFromSarama(sp, zap.NewNop()), "order_events")
	require.NoError(t, publisher.OrderStatusChanged(context.Background(), order, domain.StatusRecebido))
	require.NoError(t, sp.Close())
}

func TestKafkaProducer_SendFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := NewProducerFromSarama(sp, zap.NewNop())
	err := producer.ProduceMessage(context.Background(), "order_events", "o-1", map[string]string{"a": "b"})

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, sp.Close())
}

type failingProducer struct {
	calls int
}

func (f *failingProducer) ProduceMessage(context.Context, string, string, interface{}) error {
	f.calls++
	return errors.New("broker down")
}

func (f *failingProducer) Close() error { return nil }

func TestBreakerProducer_OpensAfterRepeatedFailures(t *testing.T) {
	next := &failingProducer{}
	producer := NewBreakerProducer(next, zap.NewNop())

	for i := 0; i < 5; i++ {
		assert.Error(t, producer.ProduceMessage(context.Background(), "t", "k", nil))
	}

	err := producer.ProduceMessage(context.Background(), "t", "k", nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, next.calls)
}

func TestExecuteWithBreaker_ReturnsTypedResult(t *testing.T) {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "test"})

	n, err := ExecuteWithBreaker(cb, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = ExecuteWithBreaker(cb, func() (int, error) { return 0, errors.New("boom") })
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestNoopProducer(t *testing.T) {
	p := NewNoopProducer()
	assert.NoError(t, p.ProduceMessage(context.Background(), "t", "k", struct{}{}))
	assert.NoError(t, p.Close())
}
