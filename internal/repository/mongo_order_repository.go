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

const OrdersCollection = "orders"

type mongoOrderRepository struct {
	col *mongo.Collection
}

// NewMongoOrderRepository creates an OrderRepository backed by the orders
// collection of db
func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{col: db.Collection(OrdersCollection)}
}

func (r *mongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if _, err := r.col.InsertOne(ctx, newOrderDocument(order)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrOrderAlreadyExists
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *mongoOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": order.ID}, newOrderDocument(order), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var doc orderDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *mongoOrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus, skip, limit int) ([]*domain.Order, error) {
	return r.find(ctx, bson.M{"status": string(status)}, skip, limit)
}

func (r *mongoOrderRepository) ListAll(ctx context.Context, skip, limit int) ([]*domain.Order, error) {
	return r.find(ctx, bson.M{}, skip, limit)
}

func (r *mongoOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error {
	update := bson.M{"$set": bson.M{"status": string(status), "updated_at": domain.Timestamp(updatedAt)}}

	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *mongoOrderRepository) find(ctx context.Context, filter bson.M, skip, limit int) ([]*domain.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.toDomain())
	}

	return orders, nil
}
