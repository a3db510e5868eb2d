package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mercado/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepo struct {
	products *mongo.Collection
}

func NewProductRepo(db *mongo.Database) *ProductRepo {
	return &ProductRepo{products: db.Collection(colProducts)}
}

func (r *ProductRepo) Insert(ctx context.Context, p domain.Product) (domain.Product, error) {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	res, err := r.products.InsertOne(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return p, nil
}

func (r *ProductRepo) ByID(ctx context.Context, id primitive.ObjectID) (domain.Product, error) {
	var p domain.Product
	err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, err
}

// ByIDs loads every referenced product in one read, keyed by id. Missing ids
// are simply absent from the map; the caller decides whether that is an error.
func (r *ProductRepo) ByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Product, error) {
	cur, err := r.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var list []domain.Product
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]domain.Product, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

// Filter drives the catalog listing: name/brand regexes, category and a
// price window, all optional.
type Filter struct {
	Q        string
	Brand    string
	Category primitive.ObjectID
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

func (r *ProductRepo) List(ctx context.Context, f Filter) ([]domain.Product, int64, error) {
	filter := bson.M{}
	if f.Q != "" {
		filter["name"] = bson.M{"$regex": f.Q, "$options": "i"}
	}
	if f.Brand != "" {
		filter["brand"] = bson.M{"$regex": f.Brand, "$options": "i"}
	}
	if !f.Category.IsZero() {
		filter["category"] = f.Category
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}

	total, err := r.products.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))
	cur, err := r.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var items []domain.Product
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ProductRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Product, error) {
	set["updated_at"] = time.Now().UTC()
	var p domain.Product
	err := r.products.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.products.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// AdjustStock applies an unconditional $inc (admin restock may go up or down;
// the schema-level floor is not enforced here).
func (r *ProductRepo) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) (*domain.Product, error) {
	var p domain.Product
	err := r.products.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": delta}, "$set": bson.M{"updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DecrementStock subtracts qty only while stock >= qty still holds at write
// time. The filter is evaluated atomically by the server, so concurrent
// orders can never jointly overdraw a product. ModifiedCount 0 means the
// precondition failed (or the product is gone) and surfaces as insufficient
// stock for that product.
func (r *ProductRepo) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := r.products.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, id.Hex())
	}
	return nil
}

// SetRating writes the denormalized review summary onto the product.
func (r *ProductRepo) SetRating(ctx context.Context, id primitive.ObjectID, avg float64, count int) error {
	res, err := r.products.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"avg_rating": avg, "ratings_count": count}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

type TopProduct struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Brand        string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Price        float64            `bson:"price" json:"price"`
	AvgRating    float64            `bson:"avgRating" json:"avgRating"`
	RatingsCount int                `bson:"ratingsCount" json:"ratingsCount"`
}

// TopReviewed ranks products by review count then average, computing both
// from the reviews collection rather than trusting the denormalized fields.
func (r *ProductRepo) TopReviewed(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 5
	}
	pipeline := []bson.M{
		{"$lookup": bson.M{
			"from":         colReviews,
			"localField":   "_id",
			"foreignField": "product",
			"as":           "reviews",
		}},
		{"$addFields": bson.M{
			"ratingsCount": bson.M{"$size": "$reviews"},
			"avgRating": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{bson.M{"$size": "$reviews"}, 0}},
				bson.M{"$avg": "$reviews.rating"},
				0,
			}},
		}},
		{"$sort": bson.D{{Key: "ratingsCount", Value: -1}, {Key: "avgRating", Value: -1}, {Key: "created_at", Value: -1}}},
		{"$limit": limit},
		{"$project": bson.M{
			"name": 1, "brand": 1, "price": 1, "ratingsCount": 1,
			"avgRating": bson.M{"$round": bson.A{"$avgRating", 2}},
		}},
	}
	cur, err := r.products.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var top []TopProduct
	err = cur.All(ctx, &top)
	return top, err
}
