package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"veneto-api/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this id already exists")
)

// ProductRepository defines the interface for product data access.
// List methods only return active products; a limit of 0 means no limit.
type ProductRepository interface {
	// Create inserts the product and fails with ErrProductAlreadyExists if the id is taken
	Create(ctx context.Context, product *domain.Product) error
	// Save inserts the product or fully replaces the one with the same id
	Save(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	ListByCategory(ctx context.Context, category domain.Category, skip, limit int) ([]*domain.Product, error)
	ListActive(ctx context.Context, skip, limit int) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a ProductRepository backed by PostgreSQL
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	sizes, err := encodeSizes(product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, name, category, description, price, active, image_url, sizes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		string(product.Category),
		product.Description,
		product.Price,
		product.Active,
		product.ImageURL,
		sizes,
		time.Now().UTC(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Save upserts a product keyed by id
func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	sizes, err := encodeSizes(product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, name, category, description, price, active, image_url, sizes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, category = EXCLUDED.category, description = EXCLUDED.description,
		    price = EXCLUDED.price, active = EXCLUDED.active, image_url = EXCLUDED.image_url,
		    sizes = EXCLUDED.sizes, updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		string(product.Category),
		product.Description,
		product.Price,
		product.Active,
		product.ImageURL,
		sizes,
		time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, category, description, price, active, image_url, sizes
		FROM products
		WHERE id = $1
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListByCategory retrieves active products of one category
func (r *productRepository) ListByCategory(ctx context.Context, category domain.Category, skip, limit int) ([]*domain.Product, error) {
	query := `
		SELECT id, name, category, description, price, active, image_url, sizes
		FROM products
		WHERE active = TRUE AND category = $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3
	`

	return r.list(ctx, query, string(category), limitArg(limit), skip)
}

// ListActive retrieves active products of every category
func (r *productRepository) ListActive(ctx context.Context, skip, limit int) ([]*domain.Product, error) {
	query := `
		SELECT id, name, category, description, price, active, image_url, sizes
		FROM products
		WHERE active = TRUE
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	return r.list(ctx, query, limitArg(limit), skip)
}

func (r *productRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProduct rebuilds a product, switching on the category to decide
// whether the sizes column is decoded
func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product  domain.Product
		category string
		sizes    []byte
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&category,
		&product.Description,
		&product.Price,
		&product.Active,
		&product.ImageURL,
		&sizes,
	)
	if err != nil {
		return nil, err
	}

	product.Category = domain.Category(category)
	if product.Kind() == domain.KindPizza {
		product.Sizes = []domain.PizzaSize{}
		if len(sizes) > 0 {
			if err := json.Unmarshal(sizes, &product.Sizes); err != nil {
				return nil, fmt.Errorf("failed to decode sizes of product %s: %w", product.ID, err)
			}
		}
	}

	return &product, nil
}

func encodeSizes(product *domain.Product) ([]byte, error) {
	if product.Kind() != domain.KindPizza {
		return nil, nil
	}

	data, err := json.Marshal(product.Sizes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sizes of product %s: %w", product.ID, err)
	}
	return data, nil
}

// limitArg maps a zero limit to SQL NULL, which Postgres reads as LIMIT ALL
func limitArg(limit int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(limit), Valid: limit > 0}
}

// isUniqueViolation reports whether err is a Postgres unique constraint violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
