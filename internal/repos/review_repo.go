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

type ReviewRepo struct {
	reviews *mongo.Collection
}

func NewReviewRepo(db *mongo.Database) *ReviewRepo {
	return &ReviewRepo{reviews: db.Collection(colReviews)}
}

func (r *ReviewRepo) Insert(ctx context.Context, rv domain.Review) (domain.Review, error) {
	now := time.Now().UTC()
	rv.CreatedAt, rv.UpdatedAt = now, now
	res, err := r.reviews.InsertOne(ctx, rv)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Review{}, domain.ErrDuplicate
		}
		return domain.Review{}, err
	}
	rv.ID = res.InsertedID.(primitive.ObjectID)
	return rv, nil
}

func (r *ReviewRepo) Get(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	var rv domain.Review
	err := r.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&rv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Review, error) {
	set["updated_at"] = time.Now().UTC()
	var rv domain.Review
	err := r.reviews.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.reviews.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// List pages all reviews, newest first. A zero product id means no filter.
func (r *ReviewRepo) List(ctx context.Context, product primitive.ObjectID, page, limit int) ([]domain.Review, int64, error) {
	filter := bson.M{}
	if !product.IsZero() {
		filter["product"] = product
	}
	total, err := r.reviews.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cur, err := r.reviews.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var items []domain.Review
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Summary computes the live (avg, count) aggregate for one product straight
// from the reviews collection. Zero reviews yields the zero summary.
func (r *ReviewRepo) Summary(ctx context.Context, product primitive.ObjectID) (domain.RatingSummary, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"product": product}},
		{"$group": bson.M{
			"_id":   "$product",
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}},
	}
	cur, err := r.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.RatingSummary{}, err
	}
	var out []domain.RatingSummary
	if err := cur.All(ctx, &out); err != nil {
		return domain.RatingSummary{}, err
	}
	if len(out) == 0 {
		return domain.RatingSummary{}, nil
	}
	return out[0], nil
}
