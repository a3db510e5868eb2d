package repos

import (
	"context"
	"errors"
	"time"

	"mercado/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CartRepo struct {
	carts *mongo.Collection
}

func NewCartRepo(db *mongo.Database) *CartRepo {
	return &CartRepo{carts: db.Collection(colCarts)}
}

func (r *CartRepo) ByUser(ctx context.Context, user primitive.ObjectID) (*domain.Cart, error) {
	var c domain.Cart
	err := r.carts.FindOne(ctx, bson.M{"user": user}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// EnsureByUser returns the user's cart, creating an empty one on first
// access. The unique index on user makes the upsert race-safe.
func (r *CartRepo) EnsureByUser(ctx context.Context, user primitive.ObjectID) (*domain.Cart, error) {
	now := time.Now().UTC()
	var c domain.Cart
	err := r.carts.FindOneAndUpdate(ctx,
		bson.M{"user": user},
		bson.M{"$setOnInsert": bson.M{"user": user, "items": []domain.CartItem{}, "created_at": now, "updated_at": now}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveItems replaces the cart's line list wholesale. Cart edits are
// last-write-wins; concurrent edits from multiple devices may lose updates.
func (r *CartRepo) SaveItems(ctx context.Context, user primitive.ObjectID, items []domain.CartItem) (*domain.Cart, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	var c domain.Cart
	err := r.carts.FindOneAndUpdate(ctx,
		bson.M{"user": user},
		bson.M{"$set": bson.M{"items": items, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ClearByUser empties the cart but keeps the document around.
func (r *CartRepo) ClearByUser(ctx context.Context, user primitive.ObjectID) error {
	res, err := r.carts.UpdateOne(ctx,
		bson.M{"user": user},
		bson.M{"$set": bson.M{"items": []domain.CartItem{}, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrCartNotFound
	}
	return nil
}

// DeleteByUser removes the cart document entirely (user deletion path).
func (r *CartRepo) DeleteByUser(ctx context.Context, user primitive.ObjectID) error {
	_, err := r.carts.DeleteOne(ctx, bson.M{"user": user})
	return err
}
