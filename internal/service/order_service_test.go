package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"veneto-api/internal/domain"
	"veneto-api/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockOrderPublisher struct {
	mock.Mock
}

func (m *mockOrderPublisher) OrderCreated(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderPublisher) OrderStatusChanged(ctx context.Context, order *domain.Order, previous domain.OrderStatus) error {
	args := m.Called(ctx, order, previous)
	return args.Error(0)
}

func newTestOrderService(t *testing.T) (*orderService, *mockOrderPublisher) {
	t.Helper()

	publisher := &mockOrderPublisher{}
	publisher.On("OrderCreated", mock.Anything, mock.Anything).Return(nil).Maybe()
	publisher.On("OrderStatusChanged", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := NewOrderService(repository.NewMemoryOrderRepository(), publisher, zap.NewNop()).(*orderService)
	return svc, publisher
}

func mustOrder(t *testing.T, id string) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder(domain.OrderParams{
		ID:            id,
		CustomerName:  "Ana",
		CustomerPhone: "11911112222",
		Items:         []domain.OrderItem{{ProductID: "p1", Name: "Cola", Quantity: 2, Price: 5}},
		TotalPrice:    10,
	})
	require.NoError(t, err)
	return o
}

func TestOrderService_CreateStampsTimestamps(t *testing.T) {
	svc, publisher := newTestOrderService(t)
	fixed := time.Date(2025, 5, 10, 19, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	order := mustOrder(t, "ORD-1")
	order.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, fixed, created.CreatedAt)
	assert.Equal(t, fixed, created.UpdatedAt)

	found, err := svc.GetByID(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, created, found)

	publisher.AssertCalled(t, "OrderCreated", mock.Anything, created)
}

func TestOrderService_CreateMatchesStoredOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestOrderService(t)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 18, 0, 0, 123456789, time.UTC) }

	created, err := svc.Create(ctx, mustOrder(t, "ORD-NS"))
	require.NoError(t, err)
	assert.Equal(t, 123000000, created.CreatedAt.Nanosecond())

	found, err := svc.GetByID(ctx, "ORD-NS")
	require.NoError(t, err)
	assert.Equal(t, created, found)

	svc.now = func() time.Time { return time.Date(2025, 3, 1, 18, 5, 0, 987654321, time.UTC) }
	updated, err := svc.UpdateStatus(ctx, "ORD-NS", domain.StatusEmPreparo)
	require.NoError(t, err)
	assert.Equal(t, 987000000, updated.UpdatedAt.Nanosecond())
}

func TestOrderService_CreateDuplicateIsConflict(t *testing.T) {
	svc, publisher := newTestOrderService(t)

	_, err := svc.Create(context.Background(), mustOrder(t, "ORD-1"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), mustOrder(t, "ORD-1"))
	assert.ErrorIs(t, err, ErrConflict)
	publisher.AssertNumberOfCalls(t, "OrderCreated", 1)
}

func TestOrderService_PublishFailureDoesNotFailCreate(t *testing.T) {
	publisher := &mockOrderPublisher{}
	publisher.On("OrderCreated", mock.Anything, mock.Anything).Return(errors.New("kafka unavailable"))
	svc := NewOrderService(repository.NewMemoryOrderRepository(), publisher, zap.NewNop())

	created, err := svc.Create(context.Background(), mustOrder(t, "ORD-9"))
	require.NoError(t, err)
	assert.Equal(t, "ORD-9", created.ID)
	publisher.AssertExpectations(t)
}

func TestOrderService_GetByID(t *testing.T) {
	svc, _ := newTestOrderService(t)

	_, err := svc.GetByID(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// Scenario: any transition is accepted, including regressing from entregue
func TestOrderService_UpdateStatusIsUnrestricted(t *testing.T) {
	ctx := context.Background()
	svc, publisher := newTestOrderService(t)

	_, err := svc.Create(ctx, mustOrder(t, "ORD-1"))
	require.NoError(t, err)

	delivered, err := svc.UpdateStatus(ctx, "ORD-1", domain.StatusEntregue)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEntregue, delivered.Status)

	back, err := svc.UpdateStatus(ctx, "ORD-1", domain.StatusRecebido)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRecebido, back.Status)

	publisher.AssertCalled(t, "OrderStatusChanged", mock.Anything, mock.Anything, domain.StatusEntregue)
}

func TestOrderService_UpdateStatusErrors(t *testing.T) {
	svc, _ := newTestOrderService(t)

	_, err := svc.UpdateStatus(context.Background(), "missing", domain.StatusPronto)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateStatus(context.Background(), "missing", domain.OrderStatus("voando"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOrderService_AdvanceStatusFollowsTransitionTable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestOrderService(t)

	_, err := svc.Create(ctx, mustOrder(t, "ORD-2"))
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(ctx, "ORD-2", domain.StatusEntregue)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, err, ErrConflict)

	for _, next := range []domain.OrderStatus{domain.StatusEmPreparo, domain.StatusPronto, domain.StatusSaiuEntrega, domain.StatusEntregue} {
		o, err := svc.AdvanceStatus(ctx, "ORD-2", next)
		require.NoError(t, err)
		assert.Equal(t, next, o.Status)
	}

	_, err = svc.AdvanceStatus(ctx, "ORD-2", domain.StatusCancelado)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	same, err := svc.AdvanceStatus(ctx, "ORD-2", domain.StatusEntregue)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEntregue, same.Status)
}

func TestOrderService_ListingsAndPagination(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestOrderService(t)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		_, err := svc.Create(ctx, mustOrder(t, id))
		require.NoError(t, err)
	}
	_, err := svc.UpdateStatus(ctx, "b", domain.StatusPronto)
	require.NoError(t, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(all))

	received, err := svc.ListByStatus(ctx, domain.StatusRecebido)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(received))

	page, err := svc.ListAllPage(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(page))

	page, err = svc.ListByStatusPage(ctx, domain.StatusPronto, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(page))

	_, err = svc.ListAllPage(ctx, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidPagination)

	_, err = svc.ListByStatusPage(ctx, domain.StatusPronto, -1, 10)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.ListByStatus(ctx, domain.OrderStatus("perdido"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// Feature: veneto-api, Property 7: Repeated status updates are idempotent
// Validates: Requirements 2 (order status)
func TestProperty_UpdateStatusIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestOrderService(t)

	_, err := svc.Create(ctx, mustOrder(t, "ORD-P"))
	require.NoError(t, err)

	properties := gopter.NewProperties(nil)

	properties.Property("same target twice gives same status and non-decreasing updated_at", prop.ForAll(
		func(status domain.OrderStatus, skew int64) bool {
			before, err := svc.GetByID(ctx, "ORD-P")
			if err != nil {
				return false
			}

			// a clock that jumps backwards must not move updated_at back
			svc.now = func() time.Time { return before.UpdatedAt.Add(time.Duration(skew) * time.Second) }

			first, err := svc.UpdateStatus(ctx, "ORD-P", status)
			if err != nil {
				return false
			}
			second, err := svc.UpdateStatus(ctx, "ORD-P", status)
			if err != nil {
				return false
			}

			return first.Status == status && second.Status == status &&
				!first.UpdatedAt.Before(before.UpdatedAt) &&
				!second.UpdatedAt.Before(first.UpdatedAt)
		},
		gen.OneConstOf(
			domain.StatusRecebido, domain.StatusEmPreparo, domain.StatusPronto,
			domain.StatusSaiuEntrega, domain.StatusEntregue, domain.StatusCancelado,
		),
		gen.Int64Range(-3600, 3600),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func ids(orders []*domain.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}
