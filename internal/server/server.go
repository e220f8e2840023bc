package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"veneto-api/internal/config"
	"veneto-api/internal/database"
	"veneto-api/internal/events"
	custommiddleware "veneto-api/internal/middleware"
	"veneto-api/internal/service"
	"veneto-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	store       *database.Store
	redisClient *redis.Client
	producer    events.Producer
}

func NewServer(cfg *config.Config, logger *zap.Logger, store *database.Store) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		store:  store,
	}

	if cfg.Redis.Enabled() {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	s.producer = newProducer(cfg.Kafka, logger)

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      s.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	cfg := s.config

	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.TracingMiddleware("http/" + cfg.Telemetry.ServiceName))
	router.Use(custommiddleware.LoggingMiddleware(s.logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(s.logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))
	if s.redisClient != nil && cfg.RateLimit.Requests > 0 {
		router.Use(custommiddleware.RateLimitMiddleware(s.redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "rate_limit",
		}, s.logger))
	}

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Veneto API online"})
	})
	router.Get("/health", s.health)

	// Initialize services
	productService := service.NewProductService(s.store.Products, s.logger)
	if s.redisClient != nil && cfg.Cache.TTL > 0 {
		productService = service.NewCachedProductService(productService, s.redisClient, cfg.Cache.TTL, s.logger)
	}
	publisher := events.NewOrderPublisher(s.producer, cfg.Kafka.OrderTopic)
	orderService := service.NewOrderService(s.store.Orders, publisher, s.logger)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productService, s.logger)
	orderHandler := transport.NewOrderHandler(orderService, s.logger)

	staffOnly := custommiddleware.StaffOnly(cfg.JWT.Secret, s.logger)

	// Register routes
	productHandler.RegisterRoutes(router, staffOnly)
	orderHandler.RegisterRoutes(router, staffOnly)

	return router
}

// health reports ok while the store answers; 503 otherwise
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := s.store.Health(ctx)
	if status["status"] != "up" {
		s.logger.Warn("Health check failed", zap.Any("store", status))
		custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unavailable",
			"store":  status,
		})
		return
	}

	custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// newProducer returns a breaker-guarded Kafka producer, or a no-op one when
// no broker is configured or reachable
func newProducer(cfg config.KafkaConfig, logger *zap.Logger) events.Producer {
	if len(cfg.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, order events disabled")
		return events.NewNoopProducer()
	}

	producer, err := events.NewKafkaProducer(cfg.Brokers, logger)
	if err != nil {
		logger.Error("Failed to create Kafka producer, order events disabled", zap.Error(err))
		return events.NewNoopProducer()
	}

	return events.NewBreakerProducer(producer, logger)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if err := s.producer.Close(); err != nil {
		s.logger.Error("Failed to close event producer", zap.Error(err))
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Close(ctx); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
	}

	s.logger.Sync()
	return nil
}
