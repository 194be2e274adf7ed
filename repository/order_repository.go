package repository

import (
	"context"
	"errors"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrderRepository struct {
	col *mongo.Collection
}

// NewOrderRepository returns an OrderRepository backed by MongoDB.
func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{col: db.Collection(CollectionOrders)}
}

func (r *mongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	result, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return translate(err, "Order")
	}
	order.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, translate(err, "Order")
	}
	return &order, nil
}

func (r *mongoOrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, translate(err, "Order")
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, translate(err, "Order")
	}
	return orders, nil
}

func (r *mongoOrderRepository) List(ctx context.Context, q models.OrderQuery) ([]models.Order, int64, error) {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err, "Order")
	}

	opts := pageOptions(q.Page, q.Limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translate(err, "Order")
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, 0, translate(err, "Order")
	}
	return orders, total, nil
}

func (r *mongoOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from models.OrderStatus, change models.StatusChange) (*models.Order, error) {
	update := bson.M{
		"$set":  bson.M{"status": change.Status, "updated_at": change.At},
		"$push": bson.M{"status_history": change},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the order is gone or someone moved it first.
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, apperrors.Newf(apperrors.ErrConflict, "Order is no longer %s", from)
	}
	if err != nil {
		return nil, translate(err, "Order")
	}
	return &order, nil
}

func (r *mongoOrderRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	return n, translate(err, "Order")
}

func (r *mongoOrderRepository) Revenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$nin": bson.A{models.OrderCancelled, models.OrderRefunded}}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, translate(err, "Order")
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, translate(err, "Order")
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}

func (r *mongoOrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err, "Order")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, translate(err, "Order")
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
