package handlers

import (
	"mercado/internal/domain"
	applog "mercado/internal/log"
	"mercado/internal/repos"
	"mercado/internal/validate"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler covers the admin-side user management routes.
type UserHandler struct {
	Users *repos.UserRepo
	Carts *repos.CartRepo
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.Users.List(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, users)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	u, err := h.Users.ByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, u)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	var body struct {
		Name     *string          `json:"name"`
		Email    *string          `json:"email"`
		Phone    *string          `json:"phone"`
		Role     *string          `json:"role"`
		Password *string          `json:"password"`
		Addrs    []domain.Address `json:"addresses"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}

	set := bson.M{}
	if body.Name != nil {
		set["name"] = *body.Name
	}
	if body.Email != nil {
		email, okEmail := validate.Email(*body.Email)
		if !okEmail {
			return failMsg(c, fiber.StatusBadRequest, "invalid email")
		}
		set["email"] = email
	}
	if body.Phone != nil {
		set["phone"] = *body.Phone
	}
	if body.Role != nil {
		if *body.Role != "client" && *body.Role != "admin" {
			return failMsg(c, fiber.StatusBadRequest, "role must be client or admin")
		}
		set["role"] = *body.Role
	}
	if body.Addrs != nil {
		set["addresses"] = body.Addrs
	}
	if body.Password != nil {
		if !validate.Password(*body.Password) {
			return failMsg(c, fiber.StatusBadRequest, "invalid password")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), 12)
		if err != nil {
			return fail(c, err)
		}
		set["password_hash"] = string(hash)
	}
	if len(set) == 0 {
		return failMsg(c, fiber.StatusBadRequest, "no fields to update")
	}

	u, err := h.Users.Update(c.Context(), id, set)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "user.update", map[string]any{"subject": id.Hex()})
	return ok(c, fiber.StatusOK, u)
}

// Delete removes the user and the user's cart with it.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, okID := validate.OID(c.Params("id"))
	if !okID {
		return fail(c, domain.ErrInvalidID)
	}
	if err := h.Users.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	if err := h.Carts.DeleteByUser(c.Context(), id); err != nil {
		applog.Error(c, "user.delete.cart", err, map[string]any{"subject": id.Hex()})
	}
	applog.Audit(c, "user.delete", map[string]any{"subject": id.Hex()})
	return ok(c, fiber.StatusOK, fiber.Map{"id": id.Hex()})
}
