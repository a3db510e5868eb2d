package repos

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names. Everything lives in one database; uniqueness and the
// conditional stock decrement are enforced per document by the server.
const (
	colUsers      = "users"
	colSessions   = "sessions"
	colCategories = "categories"
	colProducts   = "products"
	colCarts      = "carts"
	colOrders     = "orders"
	colReviews    = "reviews"
)

func Open(uri, name string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(name)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

// ensureIndexes creates the unique keys the business rules lean on:
// one account per email, one category per name, one cart per user and
// one review per (user, product).
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	for col, model := range map[string]mongo.IndexModel{
		colUsers:      {Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		colCategories: {Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		colCarts:      {Keys: bson.D{{Key: "user", Value: 1}}, Options: unique},
		colReviews:    {Keys: bson.D{{Key: "user", Value: 1}, {Key: "product", Value: 1}}, Options: unique},
		colOrders:     {Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}},
	} {
		if _, err := db.Collection(col).Indexes().CreateOne(ctx, model); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin upserts one admin account from config. Safe to run every start.
func SeedAdmin(db *mongo.Database, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	res, err := db.Collection(colUsers).UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$setOnInsert": bson.M{
				"name":          "Admin",
				"email":         email,
				"password_hash": string(hash),
				"role":          "admin",
				"created_at":    now,
				"updated_at":    now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if res.UpsertedCount > 0 {
		log.Printf("[seed] created admin user %s", email)
	}
	return nil
}
