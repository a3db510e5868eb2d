package handlers

import (
	"time"

	"mercado/internal/domain"
	applog "mercado/internal/log"
	"mercado/internal/repos"
	"mercado/internal/services"
	"mercado/internal/validate"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderHandler struct {
	Order    *services.OrderService
	Orders   *repos.OrderRepo
	Products *repos.ProductRepo
	Users    *repos.UserRepo
}

type orderBuyer struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name,omitempty"`
	Email string             `json:"email,omitempty"`
}

type orderLineView struct {
	Product  primitive.ObjectID `json:"product"`
	Name     string             `json:"name,omitempty"`
	Brand    string             `json:"brand,omitempty"`
	Qty      int                `json:"qty"`
	Price    float64            `json:"price"`
	Subtotal float64            `json:"subtotal"`
}

type orderView struct {
	ID            primitive.ObjectID `json:"id"`
	Buyer         orderBuyer         `json:"buyer"`
	Items         []orderLineView    `json:"items"`
	Total         float64            `json:"total"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"paymentMethod"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// expand joins buyer and product display fields onto the persisted snapshot.
// The snapshot's prices and subtotals are served as stored, never recomputed.
func (h *OrderHandler) expand(c *fiber.Ctx, o *domain.Order) orderView {
	view := orderView{
		ID:            o.ID,
		Buyer:         orderBuyer{ID: o.User},
		Total:         o.Total,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
		Items:         make([]orderLineView, 0, len(o.Items)),
	}
	if u, err := h.Users.ByID(c.Context(), o.User); err == nil {
		view.Buyer.Name, view.Buyer.Email = u.Name, u.Email
	}

	ids := make([]primitive.ObjectID, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.Product)
	}
	prods, err := h.Products.ByIDs(c.Context(), ids)
	if err != nil {
		prods = nil
	}
	for _, it := range o.Items {
		line := orderLineView{Product: it.Product, Qty: it.Qty, Price: it.Price, Subtotal: it.Subtotal}
		if p, found := prods[it.Product]; found {
			line.Name, line.Brand = p.Name, p.Brand
		}
		view.Items = append(view.Items, line)
	}
	return view
}

// Create converts the caller's cart into an order. Admins may pass a userId
// to place on behalf of another user.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	actor := currentUser(c)
	var body struct {
		UserID        string `json:"userId"`
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}

	user := actor.ID
	if body.UserID != "" {
		id, okID := validate.OID(body.UserID)
		if !okID {
			return fail(c, domain.ErrInvalidID)
		}
		if id != actor.ID && actor.Role != "admin" {
			return failMsg(c, fiber.StatusForbidden, "owner or admin only")
		}
		user = id
	}

	order, err := h.Order.Place(c.Context(), user, body.PaymentMethod)
	if err != nil {
		applog.Security(c, "order.place.fail", map[string]any{"user": user.Hex(), "error": err.Error()})
		return fail(c, err)
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": order.ID.Hex(), "total": order.Total})
	return ok(c, fiber.StatusCreated, h.expand(c, &order))
}

// List returns every order, newest first (admin).
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Orders.ListAll(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, orders)
}

// ListByUser returns one user's orders (owner or admin).
func (h *OrderHandler) ListByUser(c *fiber.Ctx) error {
	user, okID := validate.OID(c.Params("userId"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	orders, err := h.Orders.ListByUser(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, orders)
}

// Get returns one order; only its owner or an admin may see it.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	o, err := h.Orders.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	actor := currentUser(c)
	if o.User != actor.ID && actor.Role != "admin" {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": id.Hex()})
		return failMsg(c, fiber.StatusForbidden, "owner or admin only")
	}
	return ok(c, fiber.StatusOK, h.expand(c, o))
}

// UpdateStatus moves an order through its lifecycle (admin). Cancelling does
// not replenish stock.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}
	if !domain.ValidOrderStatus(body.Status) {
		return fail(c, domain.ErrInvalidStatus)
	}

	o, err := h.Orders.UpdateStatus(c.Context(), id, body.Status)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.status", map[string]any{"order_id": id.Hex(), "status": body.Status})
	return ok(c, fiber.StatusOK, o)
}

// Delete is the only deletion path for orders (admin).
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	if err := h.Orders.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.delete", map[string]any{"order_id": id.Hex()})
	return ok(c, fiber.StatusOK, fiber.Map{"id": id.Hex()})
}

func (h *OrderHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Orders.StatsByStatus(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, stats)
}
