package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"veneto-api/internal/domain"
	"veneto-api/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const productCachePrefix = "product:"

type cachedProductService struct {
	next        ProductService
	redisClient *redis.Client
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewCachedProductService puts a Redis read-through cache in front of
// GetByID. Writes through Update and Deactivate evict the entry. Redis
// failures are logged and never fail the call.
func NewCachedProductService(next ProductService, redisClient *redis.Client, ttl time.Duration, log *zap.Logger) ProductService {
	return &cachedProductService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    ttl,
		logger:      log,
	}
}

func (s *cachedProductService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	return s.next.Create(ctx, product)
}

func (s *cachedProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidArgument("product id is required")
	}

	key := productCachePrefix + id

	val, err := s.redisClient.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var product domain.Product
		if err := json.Unmarshal(val, &product); err == nil {
			return &product, nil
		}
		logger.Warn(ctx, s.logger, "Discarding undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		logger.Warn(ctx, s.logger, "Product cache read failed", zap.String("key", key), zap.Error(err))
	}

	product, err := s.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		if err := s.redisClient.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
			logger.Warn(ctx, s.logger, "Product cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return product, nil
}

func (s *cachedProductService) ListActive(ctx context.Context, skip, limit int) ([]*domain.Product, error) {
	return s.next.ListActive(ctx, skip, limit)
}

func (s *cachedProductService) ListByCategory(ctx context.Context, category domain.Category, skip, limit int) ([]*domain.Product, error) {
	return s.next.ListByCategory(ctx, category, skip, limit)
}

func (s *cachedProductService) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	product, err := s.next.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, id)
	return product, nil
}

func (s *cachedProductService) Deactivate(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.next.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, id)
	return product, nil
}

func (s *cachedProductService) evict(ctx context.Context, id string) {
	if err := s.redisClient.Del(ctx, productCachePrefix+id).Err(); err != nil {
		logger.Warn(ctx, s.logger, "Product cache eviction failed", zap.String("product_id", id), zap.Error(err))
	}
}

// PurgeProductCache deletes every cached product entry and returns how many
// keys were removed. Run it after the store is cleared.
func PurgeProductCache(ctx context.Context, redisClient *redis.Client) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := redisClient.Scan(ctx, cursor, productCachePrefix+"*", 100).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := redisClient.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
