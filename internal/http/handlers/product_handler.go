package handlers

import (
	"strconv"
	"strings"

	"mercado/internal/domain"
	applog "mercado/internal/log"
	"mercado/internal/repos"
	"mercado/internal/validate"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

type ProductHandler struct {
	Products   *repos.ProductRepo
	Categories *repos.CategoryRepo
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var body struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Brand       string  `json:"brand"`
		Category    string  `json:"category"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || body.Category == "" || body.Price < 0 || body.Stock < 0 {
		return failMsg(c, fiber.StatusBadRequest, "name, category and a non-negative price are required")
	}
	catID, okID := validate.OID(body.Category)
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	if _, err := h.Categories.Get(c.Context(), catID); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid category")
	}

	p, err := h.Products.Insert(c.Context(), domain.Product{
		Name:        body.Name,
		Description: body.Description,
		Brand:       body.Brand,
		Category:    catID,
		Price:       body.Price,
		Stock:       body.Stock,
	})
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID.Hex()})
	return ok(c, fiber.StatusCreated, p)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, limit := validate.Page(c.Query("page"), c.Query("limit"))
	f := repos.Filter{
		Q:     c.Query("q"),
		Brand: c.Query("brand"),
		Page:  page,
		Limit: limit,
	}
	if cat := c.Query("category"); cat != "" {
		catID, okID := validate.OID(cat)
		if !okID {
			return fail(c, domain.ErrInvalidID)
		}
		f.Category = catID
	}
	if v := c.Query("minPrice"); v != "" {
		if min, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &min
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if max, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &max
		}
	}

	items, total, err := h.Products.List(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"items": items, "page": page, "limit": limit, "total": total})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	p, err := h.Products.ByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	var body struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Brand       *string  `json:"brand"`
		Category    *string  `json:"category"`
		Price       *float64 `json:"price"`
		Stock       *int     `json:"stock"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}

	set := bson.M{}
	if body.Name != nil {
		set["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Description != nil {
		set["description"] = *body.Description
	}
	if body.Brand != nil {
		set["brand"] = *body.Brand
	}
	if body.Category != nil {
		catID, okCat := validate.OID(*body.Category)
		if !okCat {
			return fail(c, domain.ErrInvalidID)
		}
		if _, err := h.Categories.Get(c.Context(), catID); err != nil {
			return failMsg(c, fiber.StatusBadRequest, "invalid category")
		}
		set["category"] = catID
	}
	if body.Price != nil {
		if *body.Price < 0 {
			return failMsg(c, fiber.StatusBadRequest, "price must be non-negative")
		}
		set["price"] = *body.Price
	}
	if body.Stock != nil {
		if *body.Stock < 0 {
			return failMsg(c, fiber.StatusBadRequest, "stock must be non-negative")
		}
		set["stock"] = *body.Stock
	}
	if len(set) == 0 {
		return failMsg(c, fiber.StatusBadRequest, "no fields to update")
	}

	p, err := h.Products.Update(c.Context(), id, set)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	if err := h.Products.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id.Hex()})
	return ok(c, fiber.StatusOK, fiber.Map{"id": id.Hex()})
}

// PatchStock takes {delta} for a relative adjustment or {stock} to set the
// counter outright.
func (h *ProductHandler) PatchStock(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	var body struct {
		Delta *int `json:"delta"`
		Stock *int `json:"stock"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}

	var p *domain.Product
	var err error
	switch {
	case body.Stock != nil:
		if *body.Stock < 0 {
			return failMsg(c, fiber.StatusBadRequest, "stock must be non-negative")
		}
		p, err = h.Products.Update(c.Context(), id, bson.M{"stock": *body.Stock})
	case body.Delta != nil:
		p, err = h.Products.AdjustStock(c.Context(), id, *body.Delta)
	default:
		return failMsg(c, fiber.StatusBadRequest, "send delta or stock")
	}
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.stock", map[string]any{"product_id": id.Hex(), "stock": p.Stock})
	return ok(c, fiber.StatusOK, p)
}

func (h *ProductHandler) Top(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	top, err := h.Products.TopReviewed(c.Context(), limit)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, top)
}
