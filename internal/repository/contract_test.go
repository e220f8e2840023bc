package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"veneto-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every adapter runs the same contract. reset empties the backing store.

func newTestProduct(t *testing.T, id string, category domain.Category, active bool) *domain.Product {
	t.Helper()

	params := domain.ProductParams{
		ID:          id,
		Name:        "Produto " + id,
		Category:    category,
		Description: "descrição",
		Price:       19.9,
		Active:      &active,
	}

	var (
		p   *domain.Product
		err error
	)
	if category == domain.CategoryPizza {
		p, err = domain.NewPizza(params, []domain.PizzaSize{{SizeCM: 25, Price: 39.9}, {SizeCM: 35, Price: 54.9}})
	} else {
		p, err = domain.NewProduct(params)
	}
	require.NoError(t, err)
	return p
}

func newTestOrder(t *testing.T, id string, createdAt time.Time) *domain.Order {
	t.Helper()

	o, err := domain.NewOrder(domain.OrderParams{
		ID:            id,
		CustomerName:  "Maria",
		CustomerPhone: "11999990000",
		Items: []domain.OrderItem{
			{ProductID: "calabresa", Name: "Pizza Calabresa", Quantity: 2, Price: 39.9},
		},
		TotalPrice: 79.8,
	})
	require.NoError(t, err)

	o.CreatedAt = createdAt.UTC().Truncate(time.Millisecond)
	o.UpdatedAt = o.CreatedAt
	return o
}

func runProductRepositoryContract(t *testing.T, repo ProductRepository, reset func(*testing.T)) {
	ctx := context.Background()

	t.Run("save then find preserves the pizza variant", func(t *testing.T) {
		reset(t)
		pizza := newTestProduct(t, "margherita", domain.CategoryPizza, true)
		require.NoError(t, repo.Save(ctx, pizza))

		found, err := repo.FindByID(ctx, "margherita")
		require.NoError(t, err)
		assert.Equal(t, domain.KindPizza, found.Kind())
		assert.Equal(t, pizza.Name, found.Name)
		assert.Equal(t, pizza.Description, found.Description)
		assert.InDelta(t, pizza.Price, found.Price, 0.001)
		assert.Equal(t, pizza.Sizes, found.Sizes)
	})

	t.Run("simple products come back without sizes", func(t *testing.T) {
		reset(t)
		require.NoError(t, repo.Save(ctx, newTestProduct(t, "guarana", domain.CategoryBebida, true)))

		found, err := repo.FindByID(ctx, "guarana")
		require.NoError(t, err)
		assert.Equal(t, domain.KindSimple, found.Kind())
		assert.Empty(t, found.Sizes)
	})

	t.Run("save upserts by id", func(t *testing.T) {
		reset(t)
		p := newTestProduct(t, "kibe", domain.CategoryEsfiha, true)
		require.NoError(t, repo.Save(ctx, p))

		p.Name = "Esfiha de Carne"
		p.Active = false
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByID(ctx, "kibe")
		require.NoError(t, err)
		assert.Equal(t, "Esfiha de Carne", found.Name)
		assert.False(t, found.Active)
	})

	t.Run("create refuses a taken id", func(t *testing.T) {
		reset(t)
		p := newTestProduct(t, "frango", domain.CategoryQuentinha, true)
		require.NoError(t, repo.Create(ctx, p))
		assert.ErrorIs(t, repo.Create(ctx, p), ErrProductAlreadyExists)
	})

	t.Run("missing id is not found", func(t *testing.T) {
		reset(t)
		_, err := repo.FindByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("listings return active products only", func(t *testing.T) {
		reset(t)
		require.NoError(t, repo.Save(ctx, newTestProduct(t, "a-pizza", domain.CategoryPizza, true)))
		require.NoError(t, repo.Save(ctx, newTestProduct(t, "b-pizza", domain.CategoryPizza, false)))
		require.NoError(t, repo.Save(ctx, newTestProduct(t, "c-bebida", domain.CategoryBebida, true)))

		active, err := repo.ListActive(ctx, 0, 100)
		require.NoError(t, err)
		assert.Equal(t, []string{"a-pizza", "c-bebida"}, productIDs(active))

		pizzas, err := repo.ListByCategory(ctx, domain.CategoryPizza, 0, 100)
		require.NoError(t, err)
		assert.Equal(t, []string{"a-pizza"}, productIDs(pizzas))

		empty, err := repo.ListByCategory(ctx, domain.CategoryQuentinha, 0, 100)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("skip and limit window the listing", func(t *testing.T) {
		reset(t)
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.Save(ctx, newTestProduct(t, fmt.Sprintf("p%d", i), domain.CategoryBebida, true)))
		}

		page, err := repo.ListActive(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2"}, productIDs(page))

		all, err := repo.ListActive(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, all, 5)

		past, err := repo.ListActive(ctx, 10, 2)
		require.NoError(t, err)
		assert.Empty(t, past)
	})
}

func runOrderRepositoryContract(t *testing.T, repo OrderRepository, reset func(*testing.T)) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	t.Run("save then find preserves the order", func(t *testing.T) {
		reset(t)
		o := newTestOrder(t, "o-1", base)
		require.NoError(t, repo.Save(ctx, o))

		found, err := repo.FindByID(ctx, "o-1")
		require.NoError(t, err)
		assert.Equal(t, o.CustomerName, found.CustomerName)
		assert.Equal(t, o.Items, found.Items)
		assert.InDelta(t, o.TotalPrice, found.TotalPrice, 0.001)
		assert.Equal(t, domain.StatusRecebido, found.Status)
		assert.True(t, o.CreatedAt.Equal(found.CreatedAt))
		assert.Equal(t, time.UTC, found.CreatedAt.Location())
	})

	t.Run("create refuses a taken id", func(t *testing.T) {
		reset(t)
		o := newTestOrder(t, "o-dup", base)
		require.NoError(t, repo.Create(ctx, o))
		assert.ErrorIs(t, repo.Create(ctx, o), ErrOrderAlreadyExists)
	})

	t.Run("listings are newest first", func(t *testing.T) {
		reset(t)
		require.NoError(t, repo.Save(ctx, newTestOrder(t, "old", base)))
		require.NoError(t, repo.Save(ctx, newTestOrder(t, "new", base.Add(time.Hour))))
		mid := newTestOrder(t, "mid", base.Add(30*time.Minute))
		mid.Status = domain.StatusPronto
		require.NoError(t, repo.Save(ctx, mid))

		all, err := repo.ListAll(ctx, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"new", "mid", "old"}, orderIDs(all))

		page, err := repo.ListAll(ctx, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"mid"}, orderIDs(page))

		received, err := repo.ListByStatus(ctx, domain.StatusRecebido, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"new", "old"}, orderIDs(received))
	})

	t.Run("update status touches status and updated_at only", func(t *testing.T) {
		reset(t)
		o := newTestOrder(t, "o-2", base)
		require.NoError(t, repo.Save(ctx, o))

		later := base.Add(2 * time.Hour)
		require.NoError(t, repo.UpdateStatus(ctx, "o-2", domain.StatusEmPreparo, later))

		found, err := repo.FindByID(ctx, "o-2")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusEmPreparo, found.Status)
		assert.True(t, later.Equal(found.UpdatedAt))
		assert.True(t, o.CreatedAt.Equal(found.CreatedAt))
		assert.Equal(t, o.CustomerName, found.CustomerName)
	})

	t.Run("sub-millisecond timestamps read back at millisecond precision", func(t *testing.T) {
		reset(t)
		precise := time.Date(2025, 3, 1, 18, 0, 0, 123456789, time.UTC)
		o := newTestOrder(t, "o-ns", base)
		o.CreatedAt = precise
		o.UpdatedAt = precise
		require.NoError(t, repo.Create(ctx, o))

		found, err := repo.FindByID(ctx, "o-ns")
		require.NoError(t, err)
		want := time.Date(2025, 3, 1, 18, 0, 0, 123000000, time.UTC)
		assert.True(t, want.Equal(found.CreatedAt), "created_at %s", found.CreatedAt)
		assert.True(t, want.Equal(found.UpdatedAt), "updated_at %s", found.UpdatedAt)

		require.NoError(t, repo.UpdateStatus(ctx, "o-ns", domain.StatusPronto, precise.Add(time.Second)))
		found, err = repo.FindByID(ctx, "o-ns")
		require.NoError(t, err)
		assert.True(t, want.Add(time.Second).Equal(found.UpdatedAt), "updated_at %s", found.UpdatedAt)
	})

	t.Run("update status of a missing order", func(t *testing.T) {
		reset(t)
		err := repo.UpdateStatus(ctx, "ghost", domain.StatusPronto, base)
		assert.ErrorIs(t, err, ErrOrderNotFound)

		_, err = repo.FindByID(ctx, "ghost")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func productIDs(products []*domain.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func orderIDs(orders []*domain.Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}
