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

// addItemAttempts bounds the increment-or-push loop when two requests race
// to create the same line.
const addItemAttempts = 3

type mongoCartRepository struct {
	col *mongo.Collection
}

// NewCartRepository returns a CartRepository backed by MongoDB.
func NewCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{col: db.Collection(CollectionCarts)}
}

func (r *mongoCartRepository) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, translate(err, "Cart")
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (r *mongoCartRepository) update(ctx context.Context, filter, update bson.M, upsert bool) (*models.Cart, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(upsert)
	var cart models.Cart
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cart); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// AddItem increments an existing line only while it stays within limit, and
// otherwise pushes a new line. The unique user_id index turns a lost upsert
// race into a duplicate key error, after which the increment is retried.
func (r *mongoCartRepository) AddItem(ctx context.Context, userID, productID primitive.ObjectID, qty, limit int) (*models.Cart, error) {
	if qty > limit {
		return nil, apperrors.ErrInsufficientStock
	}
	for attempt := 0; attempt < addItemAttempts; attempt++ {
		now := time.Now().UTC()
		cart, err := r.update(ctx,
			bson.M{"user_id": userID, "items": bson.M{"$elemMatch": bson.M{
				"product_id": productID,
				"quantity":   bson.M{"$lte": limit - qty},
			}}},
			bson.M{
				"$inc": bson.M{"items.$.quantity": qty},
				"$set": bson.M{"updated_at": now},
			},
			false,
		)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, translate(err, "Cart")
		}

		cart, err = r.update(ctx,
			bson.M{"user_id": userID, "items.product_id": bson.M{"$ne": productID}},
			bson.M{
				"$push": bson.M{"items": models.CartItem{ProductID: productID, Quantity: qty}},
				"$set":  bson.M{"updated_at": now},
			},
			true,
		)
		if err == nil {
			return cart, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, translate(err, "Cart")
		}

		// The line exists. If it is already too large, retrying cannot help.
		n, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID, "items": bson.M{"$elemMatch": bson.M{
			"product_id": productID,
			"quantity":   bson.M{"$gt": limit - qty},
		}}})
		if err != nil {
			return nil, translate(err, "Cart")
		}
		if n > 0 {
			return nil, apperrors.ErrInsufficientStock
		}
	}
	return nil, apperrors.Newf(apperrors.ErrConflict, "Cart changed concurrently, please retry")
}

func (r *mongoCartRepository) SetItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, qty int) (*models.Cart, error) {
	cart, err := r.update(ctx,
		bson.M{"user_id": userID, "items.product_id": productID},
		bson.M{"$set": bson.M{"items.$.quantity": qty, "updated_at": time.Now().UTC()}},
		false,
	)
	if err != nil {
		return nil, translate(err, "Cart item")
	}
	return cart, nil
}

func (r *mongoCartRepository) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	cart, err := r.update(ctx,
		bson.M{"user_id": userID, "items.product_id": productID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"product_id": productID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		false,
	)
	if err != nil {
		return nil, translate(err, "Cart item")
	}
	return cart, nil
}

func (r *mongoCartRepository) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"user_id": userID})
	return translate(err, "Cart")
}
