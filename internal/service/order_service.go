package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"veneto-api/internal/domain"
	"veneto-api/internal/events"
	"veneto-api/internal/logger"
	"veneto-api/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// OrderService defines the interface for order business logic.
// Orders are validated by domain.NewOrder; this layer does not re-check
// items or totals.
type OrderService interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	ListAllPage(ctx context.Context, skip, limit int) ([]*domain.Order, error)
	ListByStatusPage(ctx context.Context, status domain.OrderStatus, skip, limit int) ([]*domain.Order, error)
	// UpdateStatus accepts any status-to-status move
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	// AdvanceStatus only accepts moves allowed by domain.CanTransition
	AdvanceStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	repo      repository.OrderRepository
	publisher events.OrderPublisher
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(repo repository.OrderRepository, publisher events.OrderPublisher, log *zap.Logger) OrderService {
	return &orderService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
		tracer:    otel.Tracer("service/order_service"),
		now:       time.Now,
	}
}

// Create stamps created_at and updated_at, overwriting whatever the caller set
func (s *orderService) Create(ctx context.Context, order *domain.Order) (_ *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Create")
	defer func() { endSpan(span, err) }()

	if order == nil {
		return nil, invalidArgument("order is required")
	}
	span.SetAttributes(attribute.String("order.id", order.ID))

	if strings.TrimSpace(order.ID) == "" {
		return nil, invalidArgument("order id is required")
	}

	if _, err := s.repo.FindByID(ctx, order.ID); err == nil {
		return nil, fmt.Errorf("%w: order %q already exists", ErrConflict, order.ID)
	} else if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, s.storageFailure(ctx, "find order", order.ID, err)
	}

	now := domain.Timestamp(s.now())
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrOrderAlreadyExists) {
			return nil, fmt.Errorf("%w: order %q already exists", ErrConflict, order.ID)
		}
		return nil, s.storageFailure(ctx, "create order", order.ID, err)
	}

	logger.Info(ctx, s.logger, "Order created",
		zap.String("order_id", order.ID),
		zap.Float64("total_price", order.TotalPrice),
		zap.Int("items", len(order.Items)),
	)

	if err := s.publisher.OrderCreated(ctx, order); err != nil {
		logger.Error(ctx, s.logger, "Failed to publish order created event",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}

	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, id string) (_ *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetByID", trace.WithAttributes(attribute.String("order.id", id)))
	defer func() { endSpan(span, err) }()

	return s.get(ctx, id)
}

func (s *orderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return s.listAll(ctx, 0, 0)
}

func (s *orderService) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	return s.listByStatus(ctx, status, 0, 0)
}

func (s *orderService) ListAllPage(ctx context.Context, skip, limit int) ([]*domain.Order, error) {
	if err := ValidatePagination(skip, limit); err != nil {
		return nil, err
	}
	return s.listAll(ctx, skip, limit)
}

func (s *orderService) ListByStatusPage(ctx context.Context, status domain.OrderStatus, skip, limit int) ([]*domain.Order, error) {
	if err := ValidatePagination(skip, limit); err != nil {
		return nil, err
	}
	return s.listByStatus(ctx, status, skip, limit)
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (_ *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("order.status", string(status)),
	))
	defer func() { endSpan(span, err) }()

	if !status.Valid() {
		return nil, invalidArgument("unknown order status %q", status)
	}

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.setStatus(ctx, current, status)
}

func (s *orderService) AdvanceStatus(ctx context.Context, id string, status domain.OrderStatus) (_ *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.AdvanceStatus", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("order.status", string(status)),
	))
	defer func() { endSpan(span, err) }()

	if !status.Valid() {
		return nil, invalidArgument("unknown order status %q", status)
	}

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	return s.setStatus(ctx, current, status)
}

// setStatus overwrites the status, then re-reads the stored order.
// updated_at never moves backwards.
func (s *orderService) setStatus(ctx context.Context, current *domain.Order, status domain.OrderStatus) (*domain.Order, error) {
	updatedAt := domain.Timestamp(s.now())
	if updatedAt.Before(current.UpdatedAt) {
		updatedAt = current.UpdatedAt
	}

	if err := s.repo.UpdateStatus(ctx, current.ID, status, updatedAt); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: order %q", ErrNotFound, current.ID)
		}
		return nil, s.storageFailure(ctx, "update order status", current.ID, err)
	}

	updated, err := s.get(ctx, current.ID)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, s.logger, "Order status updated",
		zap.String("order_id", updated.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
	)

	if err := s.publisher.OrderStatusChanged(ctx, updated, current.Status); err != nil {
		logger.Error(ctx, s.logger, "Failed to publish order status event",
			zap.String("order_id", updated.ID),
			zap.Error(err),
		)
	}

	return updated, nil
}

func (s *orderService) listAll(ctx context.Context, skip, limit int) (_ []*domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListAll")
	defer func() { endSpan(span, err) }()

	orders, err := s.repo.ListAll(ctx, skip, limit)
	if err != nil {
		return nil, s.storageFailure(ctx, "list orders", "", err)
	}
	return orders, nil
}

func (s *orderService) listByStatus(ctx context.Context, status domain.OrderStatus, skip, limit int) (_ []*domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListByStatus", trace.WithAttributes(attribute.String("order.status", string(status))))
	defer func() { endSpan(span, err) }()

	if !status.Valid() {
		return nil, invalidArgument("unknown order status %q", status)
	}

	orders, err := s.repo.ListByStatus(ctx, status, skip, limit)
	if err != nil {
		return nil, s.storageFailure(ctx, "list orders by status", string(status), err)
	}
	return orders, nil
}

// get rejects an empty id before any storage call
func (s *orderService) get(ctx context.Context, id string) (*domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidArgument("order id is required")
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: order %q", ErrNotFound, id)
		}
		return nil, s.storageFailure(ctx, "find order", id, err)
	}
	return order, nil
}

func (s *orderService) storageFailure(ctx context.Context, op, id string, err error) error {
	logger.Error(ctx, s.logger, "Order storage failure",
		zap.String("op", op),
		zap.String("order_id", id),
		zap.Error(err),
	)
	return storageError(op, id, err)
}
