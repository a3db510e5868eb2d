package services_test

import (
	"context"
	"fmt"
	"sync"

	"mercado/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stand-ins for the mongo repos. The mutex in fakeProducts makes
// DecrementStock check-and-write atomic, mirroring the server-side
// conditional update the real repo relies on.

type fakeProducts struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]domain.Product

	// afterDecrement runs outside the lock after each successful decrement,
	// letting tests interleave a competing writer between lines.
	afterDecrement func(id primitive.ObjectID)
	failRating     bool
}

func newFakeProducts(ps ...domain.Product) *fakeProducts {
	f := &fakeProducts{items: map[primitive.ObjectID]domain.Product{}}
	for _, p := range ps {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) ByID(_ context.Context, id primitive.ObjectID) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, found := f.items[id]
	if !found {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProducts) ByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[primitive.ObjectID]domain.Product{}
	for _, id := range ids {
		if p, found := f.items[id]; found {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeProducts) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	f.mu.Lock()
	p, found := f.items[id]
	if !found || p.Stock < qty {
		f.mu.Unlock()
		return fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, id.Hex())
	}
	p.Stock -= qty
	f.items[id] = p
	f.mu.Unlock()

	if f.afterDecrement != nil {
		f.afterDecrement(id)
	}
	return nil
}

func (f *fakeProducts) SetRating(_ context.Context, id primitive.ObjectID, avg float64, count int) error {
	if f.failRating {
		return fmt.Errorf("rating write refused")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, found := f.items[id]
	if !found {
		return domain.ErrProductNotFound
	}
	p.AvgRating, p.RatingsCount = avg, count
	f.items[id] = p
	return nil
}

func (f *fakeProducts) setStock(id primitive.ObjectID, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.items[id]
	p.Stock = stock
	f.items[id] = p
}

func (f *fakeProducts) setPrice(id primitive.ObjectID, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.items[id]
	p.Price = price
	f.items[id] = p
}

func (f *fakeProducts) stock(id primitive.ObjectID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].Stock
}

func (f *fakeProducts) rating(id primitive.ObjectID) (float64, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.items[id]
	return p.AvgRating, p.RatingsCount
}

type fakeCarts struct {
	mu        sync.Mutex
	carts     map[primitive.ObjectID]domain.Cart
	failClear bool
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[primitive.ObjectID]domain.Cart{}}
}

func copyCart(c domain.Cart) *domain.Cart {
	out := c
	out.Items = append([]domain.CartItem(nil), c.Items...)
	return &out
}

func (f *fakeCarts) ByUser(_ context.Context, user primitive.ObjectID) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, found := f.carts[user]
	if !found {
		return nil, domain.ErrCartNotFound
	}
	return copyCart(c), nil
}

func (f *fakeCarts) EnsureByUser(_ context.Context, user primitive.ObjectID) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, found := f.carts[user]
	if !found {
		c = domain.Cart{ID: primitive.NewObjectID(), User: user, Items: []domain.CartItem{}}
		f.carts[user] = c
	}
	return copyCart(c), nil
}

func (f *fakeCarts) SaveItems(_ context.Context, user primitive.ObjectID, items []domain.CartItem) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, found := f.carts[user]
	if !found {
		return nil, domain.ErrCartNotFound
	}
	c.Items = append([]domain.CartItem(nil), items...)
	f.carts[user] = c
	return copyCart(c), nil
}

func (f *fakeCarts) ClearByUser(_ context.Context, user primitive.ObjectID) error {
	if f.failClear {
		return fmt.Errorf("cart store unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, found := f.carts[user]
	if !found {
		return domain.ErrCartNotFound
	}
	c.Items = []domain.CartItem{}
	f.carts[user] = c
	return nil
}

func (f *fakeCarts) put(user primitive.ObjectID, items ...domain.CartItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[user] = domain.Cart{ID: primitive.NewObjectID(), User: user, Items: items}
}

func (f *fakeCarts) items(user primitive.ObjectID) []domain.CartItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.CartItem(nil), f.carts[user].Items...)
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (f *fakeOrders) Insert(_ context.Context, o domain.Order) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = primitive.NewObjectID()
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeOrders) HasPurchase(_ context.Context, user, product primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.User != user || o.Status == domain.OrderStatusCancelled {
			continue
		}
		for _, it := range o.Items {
			if it.Product == product {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeOrders) last() domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[len(f.orders)-1]
}

type fakeReviews struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]domain.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{byID: map[primitive.ObjectID]domain.Review{}}
}

func (f *fakeReviews) Insert(_ context.Context, rv domain.Review) (domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.User == rv.User && existing.Product == rv.Product {
			return domain.Review{}, domain.ErrDuplicate
		}
	}
	rv.ID = primitive.NewObjectID()
	f.byID[rv.ID] = rv
	return rv, nil
}

func (f *fakeReviews) Get(_ context.Context, id primitive.ObjectID) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, found := f.byID[id]
	if !found {
		return nil, domain.ErrReviewNotFound
	}
	return &rv, nil
}

func (f *fakeReviews) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, found := f.byID[id]
	if !found {
		return nil, domain.ErrReviewNotFound
	}
	if v, has := set["rating"]; has {
		rv.Rating = v.(int)
	}
	if v, has := set["comment"]; has {
		rv.Comment = v.(string)
	}
	f.byID[id] = rv
	return &rv, nil
}

func (f *fakeReviews) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, found := f.byID[id]; !found {
		return domain.ErrReviewNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeReviews) Summary(_ context.Context, product primitive.ObjectID) (domain.RatingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum, n int
	for _, rv := range f.byID {
		if rv.Product == product {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return domain.RatingSummary{}, nil
	}
	return domain.RatingSummary{Avg: float64(sum) / float64(n), Count: n}, nil
}
