package handlers

import (
	"strings"

	"mercado/internal/domain"
	"mercado/internal/repos"
	"mercado/internal/validate"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

type CategoryHandler struct {
	Categories *repos.CategoryRepo
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return failMsg(c, fiber.StatusBadRequest, "name is required")
	}
	cat, err := h.Categories.Insert(c.Context(), domain.Category{Name: body.Name, Description: body.Description})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, cat)
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Categories.List(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, cats)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	cat, err := h.Categories.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, cat)
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}
	set := bson.M{}
	if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
		set["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Description != nil {
		set["description"] = *body.Description
	}
	if len(set) == 0 {
		return failMsg(c, fiber.StatusBadRequest, "no fields to update")
	}
	cat, err := h.Categories.Update(c.Context(), id, set)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, cat)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	if err := h.Categories.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"id": id.Hex()})
}

func (h *CategoryHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Categories.Stats(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, stats)
}
