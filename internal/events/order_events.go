package events

import (
	"context"
	"time"

	"veneto-api/internal/domain"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message published on the order topic
type OrderEvent struct {
	EventID        string             `json:"event_id"`
	Type           string             `json:"type"`
	OrderID        string             `json:"order_id"`
	Status         domain.OrderStatus `json:"status"`
	PreviousStatus domain.OrderStatus `json:"previous_status,omitempty"`
	TotalPrice     float64            `json:"total_price"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// OrderPublisher announces order lifecycle changes
type OrderPublisher interface {
	OrderCreated(ctx context.Context, order *domain.Order) error
	OrderStatusChanged(ctx context.Context, order *domain.Order, previous domain.OrderStatus) error
}

type orderPublisher struct {
	producer Producer
	topic    string
}

// NewOrderPublisher publishes order events to topic, keyed by order id so
// every event of one order lands on the same partition
func NewOrderPublisher(producer Producer, topic string) OrderPublisher {
	return &orderPublisher{producer: producer, topic: topic}
}

func (p *orderPublisher) OrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TypeOrderCreated, order, "")
}

func (p *orderPublisher) OrderStatusChanged(ctx context.Context, order *domain.Order, previous domain.OrderStatus) error {
	return p.publish(ctx, TypeOrderStatusChanged, order, previous)
}

func (p *orderPublisher) publish(ctx context.Context, eventType string, order *domain.Order, previous domain.OrderStatus) error {
	event := OrderEvent{
		EventID:        uuid.NewString(),
		Type:           eventType,
		OrderID:        order.ID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalPrice:     order.TotalPrice,
		OccurredAt:     time.Now().UTC(),
	}

	return p.producer.ProduceMessage(ctx, p.topic, order.ID, event)
}
