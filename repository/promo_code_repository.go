package repository

import (
	"context"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPromoCodeRepository struct {
	col *mongo.Collection
}

// NewPromoCodeRepository returns a PromoCodeRepository backed by MongoDB.
func NewPromoCodeRepository(db *mongo.Database) PromoCodeRepository {
	return &mongoPromoCodeRepository{col: db.Collection(CollectionPromoCodes)}
}

func (r *mongoPromoCodeRepository) Create(ctx context.Context, promo *models.PromoCode) error {
	now := time.Now().UTC()
	promo.Code = models.NormalizePromoCode(promo.Code)
	promo.CreatedAt = now
	promo.UpdatedAt = now
	result, err := r.col.InsertOne(ctx, promo)
	if err != nil {
		return translate(err, "Promo code")
	}
	promo.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoPromoCodeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&promo); err != nil {
		return nil, translate(err, "Promo code")
	}
	return &promo, nil
}

func (r *mongoPromoCodeRepository) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.col.FindOne(ctx, bson.M{"code": models.NormalizePromoCode(code)}).Decode(&promo); err != nil {
		return nil, translate(err, "Promo code")
	}
	return &promo, nil
}

func (r *mongoPromoCodeRepository) List(ctx context.Context) ([]models.PromoCode, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, translate(err, "Promo code")
	}
	defer cursor.Close(ctx)

	promos := []models.PromoCode{}
	if err = cursor.All(ctx, &promos); err != nil {
		return nil, translate(err, "Promo code")
	}
	return promos, nil
}

func (r *mongoPromoCodeRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.PromoCode, error) {
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var promo models.PromoCode
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&promo); err != nil {
		return nil, translate(err, "Promo code")
	}
	return &promo, nil
}

func (r *mongoPromoCodeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "Promo code")
	}
	if result.DeletedCount == 0 {
		return notFound("Promo code")
	}
	return nil
}

func (r *mongoPromoCodeRepository) IncrementUse(ctx context.Context, code string) error {
	filter := bson.M{
		"code":      models.NormalizePromoCode(code),
		"is_active": true,
		"$or": bson.A{
			bson.M{"max_uses": 0},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_uses"}}},
		},
	}
	result, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"used_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return translate(err, "Promo code")
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrInvalidPromo.WithMessage("promo code usage limit reached")
	}
	return nil
}

func (r *mongoPromoCodeRepository) DecrementUse(ctx context.Context, code string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"code": models.NormalizePromoCode(code), "used_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"used_count": -1}},
	)
	return translate(err, "Promo code")
}
