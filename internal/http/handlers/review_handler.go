package handlers

import (
	"mercado/internal/domain"
	applog "mercado/internal/log"
	"mercado/internal/repos"
	"mercado/internal/services"
	"mercado/internal/validate"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewHandler struct {
	Review  *services.ReviewService
	Reviews *repos.ReviewRepo
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var body struct {
		Product string `json:"product"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}
	if body.Product == "" || body.Rating == 0 {
		return failMsg(c, fiber.StatusBadRequest, "product and rating are required")
	}
	product, okID := validate.OID(body.Product)
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}

	rv, err := h.Review.Create(c.Context(), currentUser(c).ID, product, body.Rating, body.Comment)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "review.create", map[string]any{"review_id": rv.ID.Hex(), "product": product.Hex()})
	return ok(c, fiber.StatusCreated, rv)
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	var body struct {
		Rating  *int    `json:"rating"`
		Comment *string `json:"comment"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}

	rv, err := h.Review.Update(c.Context(), id, currentUser(c), body.Rating, body.Comment)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, rv)
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	if err := h.Review.Delete(c.Context(), id, currentUser(c)); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"id": id.Hex()})
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	return h.list(c, primitive.NilObjectID)
}

func (h *ReviewHandler) ListByProduct(c *fiber.Ctx) error {
	product, okID := validate.OID(c.Params("productId"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	return h.list(c, product)
}

func (h *ReviewHandler) list(c *fiber.Ctx, product primitive.ObjectID) error {
	page, limit := validate.Page(c.Query("page"), c.Query("limit"))
	items, total, err := h.Reviews.List(c.Context(), product, page, limit)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"items": items, "page": page, "limit": limit, "total": total})
}
