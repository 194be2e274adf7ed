package repository

import (
	"context"
	"regexp"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProductRepository struct {
	col *mongo.Collection
}

// NewProductRepository returns a ProductRepository backed by MongoDB.
func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{col: db.Collection(CollectionProducts)}
}

// ProductFilter builds the find filter for a catalogue query.
func ProductFilter(q models.ProductQuery) bson.M {
	filter := bson.M{}
	if !q.IncludeInactive {
		filter["is_active"] = true
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Featured != nil {
		filter["is_featured"] = *q.Featured
	}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
			bson.M{"sku": pattern},
		}
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	return filter
}

// ProductSort maps a sort key to a sort document; unknown keys sort newest first.
func ProductSort(sort string) bson.D {
	switch sort {
	case models.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case models.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case models.SortName:
		return bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}

func (r *mongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.SKU = models.NormalizeSKU(product.SKU)
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Images == nil {
		product.Images = []models.ProductImage{}
	}
	result, err := r.col.InsertOne(ctx, product)
	if err != nil {
		return translate(err, "Product")
	}
	product.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, translate(err, "Product")
	}
	return &product, nil
}

func (r *mongoProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translate(err, "Product")
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, translate(err, "Product")
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *mongoProductRepository) List(ctx context.Context, q models.ProductQuery) ([]models.Product, int64, error) {
	filter := ProductFilter(q)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err, "Product")
	}

	cursor, err := r.col.Find(ctx, filter, pageOptions(q.Page, q.Limit).SetSort(ProductSort(q.Sort)))
	if err != nil {
		return nil, 0, translate(err, "Product")
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err = cursor.All(ctx, &products); err != nil {
		return nil, 0, translate(err, "Product")
	}
	return products, total, nil
}

func (r *mongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product); err != nil {
		return nil, translate(err, "Product")
	}
	return &product, nil
}

func (r *mongoProductRepository) AddImage(ctx context.Context, id primitive.ObjectID, image models.ProductImage) (*models.Product, error) {
	update := bson.M{
		"$push": bson.M{"images": image},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&product); err != nil {
		return nil, translate(err, "Product")
	}
	return &product, nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "Product")
	}
	if result.DeletedCount == 0 {
		return notFound("Product")
	}
	return nil
}

func (r *mongoProductRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	result, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return translate(err, "Product")
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrInsufficientStock.WithDetails([]string{id.Hex()})
	}
	return nil
}

func (r *mongoProductRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"stock": qty},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	return translate(err, "Product")
}

func (r *mongoProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	return n, translate(err, "Product")
}

func (r *mongoProductRepository) InventoryValue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$multiply": bson.A{"$price", "$stock"}}},
		}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, translate(err, "Product")
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, translate(err, "Product")
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}
