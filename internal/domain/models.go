package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Zip     string `bson:"zip,omitempty" json:"zip,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // client | admin
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Addresses    []Address          `bson:"addresses,omitempty" json:"addresses,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Session binds an opaque bearer token to a user.
type Session struct {
	Token     string             `bson:"_id" json:"-"`
	UserID    primitive.ObjectID `bson:"user_id" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"-"`
	LastSeen  time.Time          `bson:"last_seen" json:"-"`
}

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Brand        string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Category     primitive.ObjectID `bson:"category" json:"category"`
	Price        float64            `bson:"price" json:"price"`
	Stock        int                `bson:"stock" json:"stock"`
	AvgRating    float64            `bson:"avg_rating" json:"avgRating"`
	RatingsCount int                `bson:"ratings_count" json:"ratingsCount"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// CartItem is one cart line. PriceAtAdd is the catalog price captured when the
// line was first added; it is never refreshed, not even on a quantity merge.
type CartItem struct {
	Product    primitive.ObjectID `bson:"product" json:"product"`
	Qty        int                `bson:"qty" json:"qty"`
	PriceAtAdd float64            `bson:"price_at_add" json:"priceAtAdd"`
}

func (it CartItem) Subtotal() float64 { return float64(it.Qty) * it.PriceAtAdd }

// Cart is the single mutable cart of one user (unique per user).
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Totals is the pure projection over stored qty x priceAtAdd pairs.
func (c *Cart) Totals() (subtotal float64, itemsCount int) {
	for _, it := range c.Items {
		subtotal += it.Subtotal()
		itemsCount += it.Qty
	}
	return subtotal, itemsCount
}

// FindItem returns the index of the line holding product, or -1.
func (c *Cart) FindItem(product primitive.ObjectID) int {
	for i, it := range c.Items {
		if it.Product == product {
			return i
		}
	}
	return -1
}

// OrderItem is an immutable line snapshot. Price is the cart's priceAtAdd at
// order time; Subtotal = Qty * Price, persisted once and never recomputed.
type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Qty      int                `bson:"qty" json:"qty"`
	Price    float64            `bson:"price" json:"price"`
	Subtotal float64            `bson:"subtotal" json:"subtotal"`
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Total         float64            `bson:"total" json:"total"`
	Status        string             `bson:"status" json:"status"`
	PaymentMethod string             `bson:"payment_method" json:"paymentMethod"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Product   primitive.ObjectID `bson:"product" json:"product"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// RatingSummary is the denormalized review aggregate written onto a product.
type RatingSummary struct {
	Avg   float64 `bson:"avg" json:"avg"`
	Count int     `bson:"count" json:"count"`
}
