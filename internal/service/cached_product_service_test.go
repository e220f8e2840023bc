package service

import (
	"context"
	"testing"
	"time"

	"veneto-api/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCachedService(t *testing.T) (ProductService, *spyProductRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := newSpyProductRepository()
	svc := NewCachedProductService(NewProductService(repo, zap.NewNop()), client, time.Minute, zap.NewNop())
	return svc, repo, mr
}

func TestCachedProductService_GetByIDServesFromCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, mr := setupCachedService(t)

	_, err := svc.Create(ctx, mustPizza(t, "pizza_portuguesa_001"))
	require.NoError(t, err)

	first, err := svc.GetByID(ctx, "pizza_portuguesa_001")
	require.NoError(t, err)
	assert.True(t, mr.Exists("product:pizza_portuguesa_001"))

	calls := repo.calls
	second, err := svc.GetByID(ctx, "pizza_portuguesa_001")
	require.NoError(t, err)

	assert.Equal(t, calls, repo.calls, "second read should not reach storage")
	assert.Equal(t, first, second)
	assert.Equal(t, domain.KindPizza, second.Kind())
}

func TestCachedProductService_GetByIDEmptyIDSkipsCacheAndStorage(t *testing.T) {
	svc, repo, mr := setupCachedService(t)
	require.NoError(t, mr.Set("product:", `{"id":"","name":"stale"}`))
	commands := mr.CommandCount()

	for _, id := range []string{"", "   "} {
		_, err := svc.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}

	assert.Equal(t, commands, mr.CommandCount())
	assert.Zero(t, repo.calls)
}

func TestCachedProductService_EntriesExpire(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := setupCachedService(t)

	_, err := svc.Create(ctx, mustProduct(t, "bebida_refri_2l", domain.CategoryBebida, 8.5))
	require.NoError(t, err)
	_, err = svc.GetByID(ctx, "bebida_refri_2l")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("product:bebida_refri_2l"))
}

func TestCachedProductService_WritesEvict(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := setupCachedService(t)

	_, err := svc.Create(ctx, mustProduct(t, "bebida_suco_500ml", domain.CategoryBebida, 6))
	require.NoError(t, err)
	_, err = svc.GetByID(ctx, "bebida_suco_500ml")
	require.NoError(t, err)

	price := 7.0
	_, err = svc.Update(ctx, "bebida_suco_500ml", domain.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.False(t, mr.Exists("product:bebida_suco_500ml"))

	fresh, err := svc.GetByID(ctx, "bebida_suco_500ml")
	require.NoError(t, err)
	assert.Equal(t, 7.0, fresh.Price)

	_, err = svc.Deactivate(ctx, "bebida_suco_500ml")
	require.NoError(t, err)
	assert.False(t, mr.Exists("product:bebida_suco_500ml"))
}

func TestCachedProductService_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := setupCachedService(t)

	_, err := svc.Create(ctx, mustProduct(t, "esfiha_queijo_001", domain.CategoryEsfiha, 4.5))
	require.NoError(t, err)

	mr.Close()

	found, err := svc.GetByID(ctx, "esfiha_queijo_001")
	require.NoError(t, err)
	assert.Equal(t, "esfiha_queijo_001", found.ID)
}

func TestCachedProductService_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := setupCachedService(t)

	_, err := svc.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("product:ghost"))
}

func TestPurgeProductCache_RemovesOnlyProductEntries(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := setupCachedService(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	for _, id := range []string{"esfiha_carne_001", "esfiha_queijo_001"} {
		_, err := svc.Create(ctx, mustProduct(t, id, domain.CategoryEsfiha, 5))
		require.NoError(t, err)
		_, err = svc.GetByID(ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, mr.Set("rate_limit:127.0.0.1", "3"))

	removed, err := PurgeProductCache(ctx, client)
	require.NoError(t, err)

	assert.Equal(t, 2, removed)
	assert.False(t, mr.Exists("product:esfiha_carne_001"))
	assert.False(t, mr.Exists("product:esfiha_queijo_001"))
	assert.True(t, mr.Exists("rate_limit:127.0.0.1"))
}
