package services_test

import (
	"context"
	"sync"
	"testing"

	"mercado/internal/domain"
	"mercado/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newOrderFixture(ps ...domain.Product) (*services.OrderService, *fakeCarts, *fakeProducts, *fakeOrders) {
	carts := newFakeCarts()
	prods := newFakeProducts(ps...)
	orders := &fakeOrders{}
	return services.NewOrderService(carts, prods, orders), carts, prods, orders
}

func TestPlaceEmptyCart(t *testing.T) {
	svc, carts, _, orders := newOrderFixture()
	user := primitive.NewObjectID()

	_, err := svc.Place(context.Background(), user, "card")
	require.ErrorIs(t, err, domain.ErrEmptyCart, "user without a cart")

	carts.put(user)
	_, err = svc.Place(context.Background(), user, "card")
	require.ErrorIs(t, err, domain.ErrEmptyCart, "cart exists but has no lines")
	assert.Zero(t, orders.count())
}

func TestPlaceDrainsStockAndClearsCart(t *testing.T) {
	p := domain.Product{ID: primitive.NewObjectID(), Name: "keyboard", Price: 10, Stock: 5}
	svc, carts, prods, orders := newOrderFixture(p)
	user := primitive.NewObjectID()
	carts.put(user, domain.CartItem{Product: p.ID, Qty: 5, PriceAtAdd: 10})

	order, err := svc.Place(context.Background(), user, "card")
	require.NoError(t, err)

	assert.Equal(t, user, order.User)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "card", order.PaymentMethod)
	assert.InDelta(t, 50.0, order.Total, 1e-9)
	assert.InDelta(t, order.SumSubtotals(), order.Total, 1e-9)
	assert.Equal(t, 0, prods.stock(p.ID))
	assert.Empty(t, carts.items(user), "cart cleared after placement")

	// The drained product cannot be ordered again.
	carts.put(user, domain.CartItem{Product: p.ID, Qty: 1, PriceAtAdd: 10})
	_, err = svc.Place(context.Background(), user, "card")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, orders.count())
}

func TestPlaceDefaultsPaymentMethod(t *testing.T) {
	p := domain.Product{ID: primitive.NewObjectID(), Price: 3, Stock: 10}
	svc, carts, _, _ := newOrderFixture(p)
	user := primitive.NewObjectID()
	carts.put(user, domain.CartItem{Product: p.ID, Qty: 1, PriceAtAdd: 3})

	order, err := svc.Place(context.Background(), user, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMethodUnselected, order.PaymentMethod)
}

func TestPlaceChargesPriceAtAdd(t *testing.T) {
	p := domain.Product{ID: primitive.NewObjectID(), Price: 10, Stock: 10}
	svc, carts, prods, _ := newOrderFixture(p)
	user := primitive.NewObjectID()
	carts.put(user, domain.CartItem{Product: p.ID, Qty: 2, PriceAtAdd: 10})

	// Catalog price moves after the line was added; the snapshot wins.
	prods.setPrice(p.ID, 25)

	order, err := svc.Place(context.Background(), user, "card")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.InDelta(t, 10.0, order.Items[0].Price, 1e-9)
	assert.InDelta(t, 20.0, order.Items[0].Subtotal, 1e-9)
	assert.InDelta(t, 20.0, order.Total, 1e-9)
}

func TestPlaceAbortsWholeOrderOnAnyBadLine(t *testing.T) {
	good := domain.Product{ID: primitive.NewObjectID(), Price: 5, Stock: 10}
	scarce := domain.Product{ID: primitive.NewObjectID(), Price: 7, Stock: 1}
	svc, carts, prods, orders := newOrderFixture(good, scarce)
	user := primitive.NewObjectID()

	// One line references a product that no longer exists.
	gone := primitive.NewObjectID()
	carts.put(user,
		domain.CartItem{Product: good.ID, Qty: 1, PriceAtAdd: 5},
		domain.CartItem{Product: gone, Qty: 1, PriceAtAdd: 9},
	)
	_, err := svc.Place(context.Background(), user, "card")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, 10, prods.stock(good.ID), "no decrement before full validation")
	assert.Zero(t, orders.count())
	assert.Len(t, carts.items(user), 2, "cart untouched on abort")

	// One line asks for more than is on hand.
	carts.put(user,
		domain.CartItem{Product: good.ID, Qty: 1, PriceAtAdd: 5},
		domain.CartItem{Product: scarce.ID, Qty: 3, PriceAtAdd: 7},
	)
	_, err = svc.Place(context.Background(), user, "card")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 10, prods.stock(good.ID))
	assert.Equal(t, 1, prods.stock(scarce.ID))
	assert.Zero(t, orders.count())
}

func TestPlaceReportsEveryBadLine(t *testing.T) {
	scarce := domain.Product{ID: primitive.NewObjectID(), Price: 7, Stock: 1}
	svc, carts, _, _ := newOrderFixture(scarce)
	user := primitive.NewObjectID()
	gone := primitive.NewObjectID()
	carts.put(user,
		domain.CartItem{Product: gone, Qty: 1, PriceAtAdd: 9},
		domain.CartItem{Product: scarce.ID, Qty: 5, PriceAtAdd: 7},
	)

	_, err := svc.Place(context.Background(), user, "card")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// A competing buyer drains the second product between this attempt's first and
// second decrements. The attempt fails, the first decrement stands, and no
// order is written.
func TestPlaceDecrementRaceLeavesEarlierLines(t *testing.T) {
	a := domain.Product{ID: primitive.NewObjectID(), Price: 5, Stock: 1}
	b := domain.Product{ID: primitive.NewObjectID(), Price: 5, Stock: 1}
	svc, carts, prods, orders := newOrderFixture(a, b)
	user := primitive.NewObjectID()
	carts.put(user,
		domain.CartItem{Product: a.ID, Qty: 1, PriceAtAdd: 5},
		domain.CartItem{Product: b.ID, Qty: 1, PriceAtAdd: 5},
	)

	prods.afterDecrement = func(id primitive.ObjectID) {
		if id == a.ID {
			prods.setStock(b.ID, 0)
		}
	}

	_, err := svc.Place(context.Background(), user, "card")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 0, prods.stock(a.ID), "earlier decrement is not rolled back")
	assert.Zero(t, orders.count())
	assert.Len(t, carts.items(user), 2)
}

func TestPlaceConcurrentNeverOversells(t *testing.T) {
	const stock, buyers = 10, 25
	p := domain.Product{ID: primitive.NewObjectID(), Price: 4, Stock: stock}
	svc, carts, prods, orders := newOrderFixture(p)

	users := make([]primitive.ObjectID, buyers)
	for i := range users {
		users[i] = primitive.NewObjectID()
		carts.put(users[i], domain.CartItem{Product: p.ID, Qty: 1, PriceAtAdd: 4})
	}

	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Place(context.Background(), users[i], "card")
		}(i)
	}
	wg.Wait()

	placed := 0
	for _, err := range errs {
		if err == nil {
			placed++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, stock, placed, "exactly the available stock is sold")
	assert.Equal(t, stock, orders.count())
	assert.Equal(t, 0, prods.stock(p.ID))
}

func TestPlaceSucceedsWhenCartClearFails(t *testing.T) {
	p := domain.Product{ID: primitive.NewObjectID(), Price: 2, Stock: 3}
	svc, carts, _, orders := newOrderFixture(p)
	user := primitive.NewObjectID()
	carts.put(user, domain.CartItem{Product: p.ID, Qty: 1, PriceAtAdd: 2})
	carts.failClear = true

	order, err := svc.Place(context.Background(), user, "card")
	require.NoError(t, err, "clearing the cart is best-effort")
	assert.False(t, order.ID.IsZero())
	assert.Equal(t, 1, orders.count())
	assert.Len(t, carts.items(user), 1, "stale cart left for the next attempt to re-validate")
}

func TestPlaceMultiLineTotal(t *testing.T) {
	a := domain.Product{ID: primitive.NewObjectID(), Price: 19.99, Stock: 4}
	b := domain.Product{ID: primitive.NewObjectID(), Price: 5.5, Stock: 9}
	svc, carts, prods, _ := newOrderFixture(a, b)
	user := primitive.NewObjectID()
	carts.put(user,
		domain.CartItem{Product: a.ID, Qty: 2, PriceAtAdd: 19.99},
		domain.CartItem{Product: b.ID, Qty: 3, PriceAtAdd: 5.5},
	)

	order, err := svc.Place(context.Background(), user, "paypal")
	require.NoError(t, err)
	assert.InDelta(t, 2*19.99+3*5.5, order.Total, 1e-9)
	assert.Equal(t, 2, prods.stock(a.ID))
	assert.Equal(t, 6, prods.stock(b.ID))
	assert.InDelta(t, order.SumSubtotals(), order.Total, 1e-9)
}
