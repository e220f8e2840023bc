package database

import (
	"context"
	"database/sql"
	"fmt"

	"veneto-api/internal/config"
	"veneto-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Store bundles the repositories of the configured driver together with the
// client that backs them. It is created once at startup and injected.
type Store struct {
	Driver   string
	Products repository.ProductRepository
	Orders   repository.OrderRepository

	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	sqlDB       *sql.DB

	migrationsDir string
	logger        *zap.Logger
}

// Open connects to the storage selected by cfg.Store.Driver. Mongo indexes
// and Postgres migrations are applied before returning.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	s := &Store{Driver: cfg.Store.Driver, logger: logger, migrationsDir: cfg.Database.MigrationsDir}

	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, err := ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		if err := EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		s.mongoClient = client
		s.mongoDB = db
		s.Products = repository.NewMongoProductRepository(db)
		s.Orders = repository.NewMongoOrderRepository(db)

	case config.StorePostgres:
		db, err := OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
			db.Close()
			return nil, err
		}
		s.sqlDB = db
		s.Products = repository.NewProductRepository(db)
		s.Orders = repository.NewOrderRepository(db)

	case config.StoreMemory:
		s.Products = repository.NewMemoryProductRepository()
		s.Orders = repository.NewMemoryOrderRepository()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	logger.Info("Storage ready", zap.String("driver", s.Driver))
	return s, nil
}

// Health reports the status of the backing storage
func (s *Store) Health(ctx context.Context) map[string]string {
	switch {
	case s.mongoClient != nil:
		return mongoHealth(ctx, s.mongoClient)
	case s.sqlDB != nil:
		return postgresHealth(ctx, s.sqlDB)
	default:
		return map[string]string{"status": "up", "message": "in-memory store"}
	}
}

// Reset removes every product and order
func (s *Store) Reset(ctx context.Context) error {
	switch {
	case s.mongoDB != nil:
		for _, name := range []string{repository.ProductsCollection, repository.OrdersCollection} {
			if _, err := s.mongoDB.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
				return fmt.Errorf("failed to clear %s: %w", name, err)
			}
		}
	case s.sqlDB != nil:
		return ResetMigrations(s.sqlDB, s.migrationsDir, s.logger)
	default:
		for _, repo := range []any{s.Products, s.Orders} {
			if c, ok := repo.(interface{ Clear() }); ok {
				c.Clear()
			}
		}
	}
	return nil
}

// Close releases the underlying client
func (s *Store) Close(ctx context.Context) error {
	switch {
	case s.mongoClient != nil:
		return s.mongoClient.Disconnect(ctx)
	case s.sqlDB != nil:
		return s.sqlDB.Close()
	}
	return nil
}
