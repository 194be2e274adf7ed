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

type mongoUserRepository struct {
	col *mongo.Collection
}

// NewUserRepository returns a UserRepository backed by MongoDB.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{col: db.Collection(CollectionUsers)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.Email = models.NormalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now
	result, err := r.col.InsertOne(ctx, user)
	if err != nil {
		return translate(err, "User")
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err, "User")
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"email": models.NormalizeEmail(email)}).Decode(&user); err != nil {
		return nil, translate(err, "User")
	}
	return &user, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user); err != nil {
		return nil, translate(err, "User")
	}
	return &user, nil
}

func (r *mongoUserRepository) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, translate(err, "User")
	}

	opts := pageOptions(page, limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"password": 0})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, translate(err, "User")
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, translate(err, "User")
	}
	return users, total, nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "User")
	}
	if result.DeletedCount == 0 {
		return notFound("User")
	}
	return nil
}

func (r *mongoUserRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	return n, translate(err, "User")
}
