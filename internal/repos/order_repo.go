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

type OrderRepo struct {
	orders *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{orders: db.Collection(colOrders)}
}

func (r *OrderRepo) Insert(ctx context.Context, o domain.Order) (domain.Order, error) {
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	res, err := r.orders.InsertOne(ctx, o)
	if err != nil {
		return domain.Order{}, err
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return o, nil
}

func (r *OrderRepo) Get(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	var o domain.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *OrderRepo) ListByUser(ctx context.Context, user primitive.ObjectID) ([]domain.Order, error) {
	return r.list(ctx, bson.M{"user": user})
}

func (r *OrderRepo) list(ctx context.Context, filter bson.M) ([]domain.Order, error) {
	cur, err := r.orders.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	err = cur.All(ctx, &orders)
	return orders, err
}

// UpdateStatus writes the status field, the only mutation an order allows.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*domain.Order, error) {
	var o domain.Order
	err := r.orders.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.orders.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// HasPurchase reports whether the user has at least one non-cancelled order
// containing the product. Gates review creation.
func (r *OrderRepo) HasPurchase(ctx context.Context, user, product primitive.ObjectID) (bool, error) {
	n, err := r.orders.CountDocuments(ctx, bson.M{
		"user":          user,
		"items.product": product,
		"status":        bson.M{"$ne": domain.OrderStatusCancelled},
	}, options.Count().SetLimit(1))
	return n > 0, err
}

type StatusStat struct {
	Status      string  `bson:"status" json:"status"`
	Orders      int     `bson:"orders" json:"orders"`
	TotalAmount float64 `bson:"totalAmount" json:"totalAmount"`
}

// StatsByStatus groups order count and billed total per status.
func (r *OrderRepo) StatsByStatus(ctx context.Context) ([]StatusStat, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":         "$status",
			"orders":      bson.M{"$sum": 1},
			"totalAmount": bson.M{"$sum": "$total"},
		}},
		{"$project": bson.M{"_id": 0, "status": "$_id", "orders": 1, "totalAmount": 1}},
		{"$sort": bson.D{{Key: "orders", Value: -1}}},
	}
	cur, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var stats []StatusStat
	err = cur.All(ctx, &stats)
	return stats, err
}
