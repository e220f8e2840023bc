package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"veneto-api/internal/config"
	"veneto-api/internal/database"
	"veneto-api/internal/domain"
	"veneto-api/internal/events"
	"veneto-api/internal/logger"
	"veneto-api/internal/seed"
	"veneto-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "remove every product and order before seeding")
	check := flag.Bool("check", false, "only print per-category product counts and the order count")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zl, err := logger.New(cfg.Server.Env, "veneto-seed")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := database.Open(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close(context.Background())

	if !*check {
		if *reset {
			if err := store.Reset(ctx); err != nil {
				zl.Fatal("Failed to reset store", zap.Error(err))
			}
			zl.Info("Store cleared")

			if cfg.Redis.Enabled() {
				purgeProductCache(ctx, cfg.Redis, zl)
			}
		}

		products := service.NewProductService(store.Products, zl)
		orders := service.NewOrderService(store.Orders, events.NewOrderPublisher(events.NewNoopProducer(), cfg.Kafka.OrderTopic), zl)
		if _, err := seed.Run(ctx, products, orders, zl); err != nil {
			zl.Fatal("Seed failed", zap.Error(err))
		}
	}

	counts, err := seed.Check(ctx, store.Products, store.Orders)
	if err != nil {
		zl.Fatal("Check failed", zap.Error(err))
	}

	fmt.Fprintf(os.Stdout, "store: %s\n", store.Driver)
	for _, c := range domain.Categories {
		fmt.Fprintf(os.Stdout, "  %-10s %d\n", c, counts.Categories[c])
	}
	fmt.Fprintf(os.Stdout, "  %-10s %d\n", "orders", counts.Orders)
}

// purgeProductCache drops cached products so the API stops serving what
// reset removed. A failure is logged; entries still expire with CACHE_TTL.
func purgeProductCache(ctx context.Context, cfg config.RedisConfig, zl *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	defer client.Close()

	removed, err := service.PurgeProductCache(ctx, client)
	if err != nil {
		zl.Warn("Failed to purge product cache", zap.Error(err))
		return
	}
	zl.Info("Product cache purged", zap.Int("keys", removed))
}
