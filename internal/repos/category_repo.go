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

type CategoryRepo struct {
	categories *mongo.Collection
	products   *mongo.Collection
}

func NewCategoryRepo(db *mongo.Database) *CategoryRepo {
	return &CategoryRepo{categories: db.Collection(colCategories), products: db.Collection(colProducts)}
}

func (r *CategoryRepo) Insert(ctx context.Context, c domain.Category) (domain.Category, error) {
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	res, err := r.categories.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Category{}, domain.ErrDuplicate
		}
		return domain.Category{}, err
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	cur, err := r.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var cats []domain.Category
	err = cur.All(ctx, &cats)
	return cats, err
}

func (r *CategoryRepo) Get(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	var c domain.Category
	err := r.categories.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Category, error) {
	set["updated_at"] = time.Now().UTC()
	var c domain.Category
	err := r.categories.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCategoryNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete refuses to remove a category that still has products.
func (r *CategoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.products.CountDocuments(ctx, bson.M{"category": id})
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrCategoryInUse
	}
	res, err := r.categories.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

type CategoryStat struct {
	Name          string `bson:"name" json:"name"`
	ProductsCount int    `bson:"productsCount" json:"productsCount"`
}

// Stats counts products per category via $lookup.
func (r *CategoryRepo) Stats(ctx context.Context) ([]CategoryStat, error) {
	pipeline := []bson.M{
		{"$lookup": bson.M{
			"from":         colProducts,
			"localField":   "_id",
			"foreignField": "category",
			"as":           "products",
		}},
		{"$project": bson.M{"name": 1, "productsCount": bson.M{"$size": "$products"}}},
		{"$sort": bson.D{{Key: "productsCount", Value: -1}, {Key: "name", Value: 1}}},
	}
	cur, err := r.categories.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var stats []CategoryStat
	err = cur.All(ctx, &stats)
	return stats, err
}
