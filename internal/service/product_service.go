package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"veneto-api/internal/domain"
	"veneto-api/internal/logger"
	"veneto-api/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ProductService defines the interface for catalogue business logic
type ProductService interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListActive(ctx context.Context, skip, limit int) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, category domain.Category, skip, limit int) ([]*domain.Product, error)
	// Update applies the fields present in patch and revalidates the product
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	// Deactivate is the only deletion path: the product stays stored with active=false
	Deactivate(ctx context.Context, id string) (*domain.Product, error)
}

type productService struct {
	repo   repository.ProductRepository
	logger *zap.Logger
	tracer trace.Tracer
}

// NewProductService creates a new instance of ProductService
func NewProductService(repo repository.ProductRepository, log *zap.Logger) ProductService {
	return &productService{
		repo:   repo,
		logger: log,
		tracer: otel.Tracer("service/product_service"),
	}
}

// Create checks the call-time rules, validates the product and inserts it.
// The returned product is the input, unchanged.
func (s *productService) Create(ctx context.Context, product *domain.Product) (_ *domain.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer func() { endSpan(span, err) }()

	if product == nil {
		return nil, invalidArgument("product is required")
	}
	span.SetAttributes(attribute.String("product.id", product.ID), attribute.String("product.category", string(product.Category)))

	if strings.TrimSpace(product.ID) == "" {
		return nil, invalidArgument("product id is required")
	}
	if product.Price <= 0 {
		return nil, invalidArgument("price must be greater than zero")
	}
	if product.IsPizza() && len(product.Sizes) == 0 {
		return nil, invalidArgument("a pizza needs at least one size")
	}
	if !product.IsPizza() && len(product.Sizes) > 0 {
		return nil, invalidArgument("only pizzas have sizes")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, product.ID); err == nil {
		return nil, fmt.Errorf("%w: product %q already exists", ErrConflict, product.ID)
	} else if !errors.Is(err, repository.ErrProductNotFound) {
		return nil, s.storageFailure(ctx, "find product", product.ID, err)
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductAlreadyExists) {
			return nil, fmt.Errorf("%w: product %q already exists", ErrConflict, product.ID)
		}
		return nil, s.storageFailure(ctx, "create product", product.ID, err)
	}

	logger.Info(ctx, s.logger, "Product created",
		zap.String("product_id", product.ID),
		zap.String("category", string(product.Category)),
	)
	return product, nil
}

func (s *productService) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetByID", trace.WithAttributes(attribute.String("product.id", id)))
	defer func() { endSpan(span, err) }()

	return s.get(ctx, id)
}

func (s *productService) ListActive(ctx context.Context, skip, limit int) (_ []*domain.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListActive")
	defer func() { endSpan(span, err) }()

	if err := ValidatePagination(skip, limit); err != nil {
		return nil, err
	}

	products, err := s.repo.ListActive(ctx, skip, limit)
	if err != nil {
		return nil, s.storageFailure(ctx, "list active products", "", err)
	}
	return products, nil
}

func (s *productService) ListByCategory(ctx context.Context, category domain.Category, skip, limit int) (_ []*domain.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListByCategory", trace.WithAttributes(attribute.String("product.category", string(category))))
	defer func() { endSpan(span, err) }()

	if !category.Valid() {
		return nil, invalidArgument("unknown category %q", category)
	}
	if err := ValidatePagination(skip, limit); err != nil {
		return nil, err
	}

	products, err := s.repo.ListByCategory(ctx, category, skip, limit)
	if err != nil {
		return nil, s.storageFailure(ctx, "list products by category", string(category), err)
	}
	return products, nil
}

func (s *productService) Update(ctx context.Context, id string, patch domain.ProductPatch) (_ *domain.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Update", trace.WithAttributes(attribute.String("product.id", id)))
	defer func() { endSpan(span, err) }()

	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Price != nil && *patch.Price <= 0 {
		return nil, invalidArgument("price must be greater than zero")
	}
	if patch.Sizes != nil && !product.IsPizza() {
		return nil, invalidArgument("only pizzas have sizes")
	}

	patch.Apply(product)
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, s.storageFailure(ctx, "save product", id, err)
	}

	logger.Info(ctx, s.logger, "Product updated", zap.String("product_id", id))
	return product, nil
}

func (s *productService) Deactivate(ctx context.Context, id string) (_ *domain.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Deactivate", trace.WithAttributes(attribute.String("product.id", id)))
	defer func() { endSpan(span, err) }()

	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Active = false
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, s.storageFailure(ctx, "save product", id, err)
	}

	logger.Info(ctx, s.logger, "Product deactivated", zap.String("product_id", id))
	return product, nil
}

// get rejects an empty id before any storage call
func (s *productService) get(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidArgument("product id is required")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: product %q", ErrNotFound, id)
		}
		return nil, s.storageFailure(ctx, "find product", id, err)
	}
	return product, nil
}

func (s *productService) storageFailure(ctx context.Context, op, id string, err error) error {
	logger.Error(ctx, s.logger, "Product storage failure",
		zap.String("op", op),
		zap.String("product_id", id),
		zap.Error(err),
	)
	return storageError(op, id, err)
}
