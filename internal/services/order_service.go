package services

import (
	"context"
	"errors"
	"fmt"

	"mercado/internal/domain"
	applog "mercado/internal/log"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockDecrementer applies the conditional per-product decrement: subtract
// qty only if stock >= qty still holds at write time.
type StockDecrementer interface {
	ProductReader
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type OrderStore interface {
	Insert(ctx context.Context, o domain.Order) (domain.Order, error)
}

type OrderService struct {
	Carts  CartStore
	Prods  StockDecrementer
	Orders OrderStore
}

func NewOrderService(carts CartStore, prods StockDecrementer, orders OrderStore) *OrderService {
	return &OrderService{Carts: carts, Prods: prods, Orders: orders}
}

// Place converts the user's cart into a persisted order.
//
// Validation failures for any line abort the whole order before a single
// write. After validation, each line gets a conditional stock decrement;
// per-product atomicity in the store guarantees stock never goes negative
// under concurrent placement. A decrement that loses the race aborts with
// insufficient stock but does not roll back decrements already applied to
// earlier lines of this attempt: that window, plus a crash between decrement
// and insert, is the documented recoverable inconsistency reconciled by an
// out-of-band audit.
func (s *OrderService) Place(ctx context.Context, user primitive.ObjectID, paymentMethod string) (domain.Order, error) {
	cart, err := s.Carts.ByUser(ctx, user)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.Order{}, domain.ErrEmptyCart
	}
	if err != nil {
		return domain.Order{}, err
	}
	if len(cart.Items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	// One read for every distinct referenced product.
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.Product)
	}
	prods, err := s.Prods.ByIDs(ctx, ids)
	if err != nil {
		return domain.Order{}, err
	}

	// Validate every line; any failure aborts the entire order.
	var lineErrs []error
	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		p, ok := prods[it.Product]
		if !ok {
			lineErrs = append(lineErrs, fmt.Errorf("%w: %s", domain.ErrProductNotFound, it.Product.Hex()))
			continue
		}
		if p.Stock < it.Qty {
			lineErrs = append(lineErrs, fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, p.ID.Hex()))
			continue
		}
		// Subtotal uses the cart's captured priceAtAdd, not the live price.
		items = append(items, domain.OrderItem{
			Product:  it.Product,
			Qty:      it.Qty,
			Price:    it.PriceAtAdd,
			Subtotal: it.Subtotal(),
		})
	}
	if len(lineErrs) > 0 {
		return domain.Order{}, errors.Join(lineErrs...)
	}

	// Conditional decrements, one per line. Losing the race on any line
	// surfaces insufficient stock for that product; earlier decrements stand.
	for _, it := range items {
		if err := s.Prods.DecrementStock(ctx, it.Product, it.Qty); err != nil {
			return domain.Order{}, err
		}
	}

	var total float64
	for _, it := range items {
		total += it.Subtotal
	}
	if paymentMethod == "" {
		paymentMethod = domain.PaymentMethodUnselected
	}

	order, err := s.Orders.Insert(ctx, domain.Order{
		User:          user,
		Items:         items,
		Total:         total,
		Status:        domain.OrderStatusPending,
		PaymentMethod: paymentMethod,
	})
	if err != nil {
		return domain.Order{}, err
	}

	// Best-effort: a stale cart is re-validated by the next attempt.
	if err := s.Carts.ClearByUser(ctx, user); err != nil {
		applog.Error(nil, "order.cart_clear", err, map[string]any{"order_id": order.ID.Hex()})
	}
	return order, nil
}
