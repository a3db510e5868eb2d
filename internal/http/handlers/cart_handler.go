package handlers

import (
	"mercado/internal/domain"
	"mercado/internal/services"
	"mercado/internal/validate"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartHandler exposes the per-user cart. Every route is guarded by
// RequireOwnerOrAdmin("userId").
type CartHandler struct {
	Cart *services.CartService
}

func cartUser(c *fiber.Ctx) (primitive.ObjectID, error) {
	id, okID := validate.OID(c.Params("userId"))
	if !okID {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return id, nil
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	user, err := cartUser(c)
	if err != nil {
		return fail(c, err)
	}
	view, err := h.Cart.View(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, view)
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	user, err := cartUser(c)
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		ProductID string `json:"productId"`
		Qty       int    `json:"qty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}
	productID, okID := validate.OID(body.ProductID)
	if !okID {
		return failMsg(c, fiber.StatusBadRequest, "productId and qty>0 required")
	}

	cart, err := h.Cart.Add(c.Context(), user, productID, body.Qty)
	if err != nil {
		return fail(c, err)
	}
	view, err := h.Cart.View(c.Context(), cart.User)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, view)
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	user, err := cartUser(c)
	if err != nil {
		return fail(c, err)
	}
	productID, okID := validate.OID(c.Params("productId"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	var body struct {
		Qty int `json:"qty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}

	if _, err := h.Cart.UpdateQty(c.Context(), user, productID, body.Qty); err != nil {
		return fail(c, err)
	}
	view, err := h.Cart.View(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, view)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	user, err := cartUser(c)
	if err != nil {
		return fail(c, err)
	}
	productID, okID := validate.OID(c.Params("productId"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}

	if _, err := h.Cart.Remove(c.Context(), user, productID); err != nil {
		return fail(c, err)
	}
	view, err := h.Cart.View(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, view)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	user, err := cartUser(c)
	if err != nil {
		return fail(c, err)
	}
	cart, err := h.Cart.Clear(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, cart)
}

func (h *CartHandler) Totals(c *fiber.Ctx) error {
	user, err := cartUser(c)
	if err != nil {
		return fail(c, err)
	}
	totals, err := h.Cart.Totals(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, totals)
}
