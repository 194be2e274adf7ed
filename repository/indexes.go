package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique and lookup indexes every collection relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}

	specs := map[string][]mongo.IndexModel{
		CollectionAdmins: {
			unique(bson.D{{Key: "username", Value: 1}}),
			unique(bson.D{{Key: "email", Value: 1}}),
		},
		CollectionUsers: {
			unique(bson.D{{Key: "email", Value: 1}}),
		},
		CollectionProducts: {
			unique(bson.D{{Key: "sku", Value: 1}}),
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "is_active", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		CollectionCarts: {
			unique(bson.D{{Key: "user_id", Value: 1}}),
		},
		CollectionOrders: {
			unique(bson.D{{Key: "order_number", Value: 1}}),
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		CollectionPromoCodes: {
			unique(bson.D{{Key: "code", Value: 1}}),
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// AllCollections lists every collection the application owns.
func AllCollections() []string {
	return []string{
		CollectionAdmins,
		CollectionUsers,
		CollectionProducts,
		CollectionCarts,
		CollectionOrders,
		CollectionPromoCodes,
	}
}
