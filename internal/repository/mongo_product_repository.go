package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veneto-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ProductsCollection = "products"

type mongoProductRepository struct {
	col *mongo.Collection
}

// NewMongoProductRepository creates a ProductRepository backed by the
// products collection of db
func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{col: db.Collection(ProductsCollection)}
}

func (r *mongoProductRepository) Create(ctx context.Context, product *domain.Product) error {
	doc := newProductDocument(product, time.Now().UTC())

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *mongoProductRepository) Save(ctx context.Context, product *domain.Product) error {
	doc := newProductDocument(product, time.Now().UTC())

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": product.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	return nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var doc productDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *mongoProductRepository) ListByCategory(ctx context.Context, category domain.Category, skip, limit int) ([]*domain.Product, error) {
	return r.find(ctx, bson.M{"category": string(category), "active": true}, skip, limit)
}

func (r *mongoProductRepository) ListActive(ctx context.Context, skip, limit int) ([]*domain.Product, error) {
	return r.find(ctx, bson.M{"active": true}, skip, limit)
}

func (r *mongoProductRepository) find(ctx context.Context, filter bson.M, skip, limit int) ([]*domain.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.toDomain())
	}

	return products, nil
}
