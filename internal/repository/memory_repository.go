package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"veneto-api/internal/domain"
)

type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

// NewMemoryProductRepository creates a process-local ProductRepository.
// Stored values are copied on the way in and out.
func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepository{products: make(map[string]*domain.Product)}
}

func (r *memoryProductRepository) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; ok {
		return ErrProductAlreadyExists
	}
	r.products[product.ID] = product.Clone()
	return nil
}

func (r *memoryProductRepository) Save(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[product.ID] = product.Clone()
	return nil
}

func (r *memoryProductRepository) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p.Clone(), nil
}

func (r *memoryProductRepository) ListByCategory(_ context.Context, category domain.Category, skip, limit int) ([]*domain.Product, error) {
	return r.list(func(p *domain.Product) bool { return p.Category == category }, skip, limit), nil
}

func (r *memoryProductRepository) ListActive(_ context.Context, skip, limit int) ([]*domain.Product, error) {
	return r.list(func(*domain.Product) bool { return true }, skip, limit), nil
}

// Clear drops every stored product
func (r *memoryProductRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = make(map[string]*domain.Product)
}

func (r *memoryProductRepository) list(match func(*domain.Product) bool, skip, limit int) []*domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.Active && match(p) {
			matched = append(matched, p.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	return window(matched, skip, limit)
}

type memoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

// NewMemoryOrderRepository creates a process-local OrderRepository
func NewMemoryOrderRepository() OrderRepository {
	return &memoryOrderRepository{orders: make(map[string]*domain.Order)}
}

func (r *memoryOrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return ErrOrderAlreadyExists
	}
	r.orders[order.ID] = storedOrder(order)
	return nil
}

func (r *memoryOrderRepository) Save(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[order.ID] = storedOrder(order)
	return nil
}

func (r *memoryOrderRepository) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (r *memoryOrderRepository) ListByStatus(_ context.Context, status domain.OrderStatus, skip, limit int) ([]*domain.Order, error) {
	return r.list(func(o *domain.Order) bool { return o.Status == status }, skip, limit), nil
}

func (r *memoryOrderRepository) ListAll(_ context.Context, skip, limit int) ([]*domain.Order, error) {
	return r.list(func(*domain.Order) bool { return true }, skip, limit), nil
}

func (r *memoryOrderRepository) UpdateStatus(_ context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = domain.Timestamp(updatedAt)
	return nil
}

// Clear drops every stored order
func (r *memoryOrderRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = make(map[string]*domain.Order)
}

func (r *memoryOrderRepository) list(match func(*domain.Order) bool, skip, limit int) []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if match(o) {
			matched = append(matched, o.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	return window(matched, skip, limit)
}

func window[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// storedOrder copies order with timestamps at the precision the other stores keep
func storedOrder(order *domain.Order) *domain.Order {
	c := order.Clone()
	c.CreatedAt = domain.Timestamp(c.CreatedAt)
	c.UpdatedAt = domain.Timestamp(c.UpdatedAt)
	return c
}
