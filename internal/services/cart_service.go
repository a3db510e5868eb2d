package services

import (
	"context"
	"errors"
	"fmt"

	"mercado/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartStore is the slice of cart persistence the aggregate needs.
type CartStore interface {
	ByUser(ctx context.Context, user primitive.ObjectID) (*domain.Cart, error)
	EnsureByUser(ctx context.Context, user primitive.ObjectID) (*domain.Cart, error)
	SaveItems(ctx context.Context, user primitive.ObjectID, items []domain.CartItem) (*domain.Cart, error)
	ClearByUser(ctx context.Context, user primitive.ObjectID) error
}

// ProductReader looks up live catalog products.
type ProductReader interface {
	ByID(ctx context.Context, id primitive.ObjectID) (domain.Product, error)
	ByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Product, error)
}

type CartService struct {
	Carts CartStore
	Prods ProductReader
}

func NewCartService(carts CartStore, prods ProductReader) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// Add appends a line with the current catalog price captured as priceAtAdd,
// or merges qty into an existing line. A merge keeps the original snapshot
// price. Stock is checked against the live product but not reserved; order
// creation re-validates authoritatively.
func (s *CartService) Add(ctx context.Context, user, productID primitive.ObjectID, qty int) (*domain.Cart, error) {
	if qty < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	p, err := s.Prods.ByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Stock < qty {
		return nil, fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, productID.Hex())
	}

	cart, err := s.Carts.EnsureByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if i := cart.FindItem(productID); i >= 0 {
		cart.Items[i].Qty += qty
	} else {
		cart.Items = append(cart.Items, domain.CartItem{Product: productID, Qty: qty, PriceAtAdd: p.Price})
	}
	return s.Carts.SaveItems(ctx, user, cart.Items)
}

// UpdateQty sets a line's quantity exactly; qty <= 0 removes the line. Live
// stock is deliberately not checked here.
func (s *CartService) UpdateQty(ctx context.Context, user, productID primitive.ObjectID, qty int) (*domain.Cart, error) {
	cart, err := s.Carts.ByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	i := cart.FindItem(productID)
	if i < 0 {
		return nil, domain.ErrLineNotFound
	}
	if qty <= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		cart.Items[i].Qty = qty
	}
	return s.Carts.SaveItems(ctx, user, cart.Items)
}

// Remove drops a line if present; removing an absent line is a no-op.
func (s *CartService) Remove(ctx context.Context, user, productID primitive.ObjectID) (*domain.Cart, error) {
	cart, err := s.Carts.ByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if i := cart.FindItem(productID); i >= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		return s.Carts.SaveItems(ctx, user, cart.Items)
	}
	return cart, nil
}

// Clear empties the cart; clearing an already-empty cart succeeds.
func (s *CartService) Clear(ctx context.Context, user primitive.ObjectID) (*domain.Cart, error) {
	if err := s.Carts.ClearByUser(ctx, user); err != nil {
		return nil, err
	}
	return s.Carts.ByUser(ctx, user)
}

type CartTotals struct {
	Subtotal   float64 `json:"subtotal"`
	ItemsCount int     `json:"itemsCount"`
}

// Totals is a pure projection from stored qty x priceAtAdd pairs. A user
// without a cart yet totals to zero.
func (s *CartService) Totals(ctx context.Context, user primitive.ObjectID) (CartTotals, error) {
	cart, err := s.Carts.ByUser(ctx, user)
	if errors.Is(err, domain.ErrCartNotFound) {
		return CartTotals{}, nil
	}
	if err != nil {
		return CartTotals{}, err
	}
	subtotal, count := cart.Totals()
	return CartTotals{Subtotal: subtotal, ItemsCount: count}, nil
}

type CartLineView struct {
	Product    primitive.ObjectID `json:"product"`
	Name       string             `json:"name,omitempty"`
	Brand      string             `json:"brand,omitempty"`
	Price      float64            `json:"price"`
	Stock      int                `json:"stock"`
	Qty        int                `json:"qty"`
	PriceAtAdd float64            `json:"priceAtAdd"`
	Subtotal   float64            `json:"subtotal"`
}

type CartView struct {
	ID         primitive.ObjectID `json:"id"`
	User       primitive.ObjectID `json:"user"`
	Items      []CartLineView     `json:"items"`
	Subtotal   float64            `json:"subtotal"`
	ItemsCount int                `json:"itemsCount"`
}

// View returns the cart expanded with live product display fields, creating
// an empty cart on first access.
func (s *CartService) View(ctx context.Context, user primitive.ObjectID) (CartView, error) {
	cart, err := s.Carts.EnsureByUser(ctx, user)
	if err != nil {
		return CartView{}, err
	}
	return s.expand(ctx, cart)
}

func (s *CartService) expand(ctx context.Context, cart *domain.Cart) (CartView, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.Product)
	}
	prods := map[primitive.ObjectID]domain.Product{}
	if len(ids) > 0 {
		var err error
		if prods, err = s.Prods.ByIDs(ctx, ids); err != nil {
			return CartView{}, err
		}
	}

	view := CartView{ID: cart.ID, User: cart.User, Items: make([]CartLineView, 0, len(cart.Items))}
	for _, it := range cart.Items {
		line := CartLineView{
			Product:    it.Product,
			Qty:        it.Qty,
			PriceAtAdd: it.PriceAtAdd,
			Subtotal:   it.Subtotal(),
		}
		if p, ok := prods[it.Product]; ok {
			line.Name, line.Brand, line.Price, line.Stock = p.Name, p.Brand, p.Price, p.Stock
		}
		view.Items = append(view.Items, line)
		view.Subtotal += line.Subtotal
		view.ItemsCount += it.Qty
	}
	return view, nil
}
