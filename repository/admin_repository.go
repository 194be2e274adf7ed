package repository

import (
	"context"
	"time"

	"storefront-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAdminRepository struct {
	col *mongo.Collection
}

// NewAdminRepository returns an AdminRepository backed by MongoDB.
func NewAdminRepository(db *mongo.Database) AdminRepository {
	return &mongoAdminRepository{col: db.Collection(CollectionAdmins)}
}

func (r *mongoAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	result, err := r.col.InsertOne(ctx, admin)
	if err != nil {
		return translate(err, "Admin")
	}
	admin.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoAdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&admin); err != nil {
		return nil, translate(err, "Admin")
	}
	return &admin, nil
}

func (r *mongoAdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&admin); err != nil {
		return nil, translate(err, "Admin")
	}
	return &admin, nil
}

func (r *mongoAdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, translate(err, "Admin")
	}
	defer cursor.Close(ctx)

	admins := []models.Admin{}
	if err = cursor.All(ctx, &admins); err != nil {
		return nil, translate(err, "Admin")
	}
	return admins, nil
}

func (r *mongoAdminRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password":   hash,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return translate(err, "Admin")
	}
	if result.MatchedCount == 0 {
		return notFound("Admin")
	}
	return nil
}

func (r *mongoAdminRepository) TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login_at": at}})
	return translate(err, "Admin")
}

func (r *mongoAdminRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "Admin")
	}
	if result.DeletedCount == 0 {
		return notFound("Admin")
	}
	return nil
}

func (r *mongoAdminRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	return n, translate(err, "Admin")
}
