package handlers

import (
	"mercado/internal/domain"
	applog "mercado/internal/log"
	"mercado/internal/services"
	"mercado/internal/validate"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type credentialed struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}
	name, okName := validate.Name(body.Name)
	email, okEmail := validate.Email(body.Email)
	if !okName || !okEmail || !validate.Password(body.Password) {
		return failMsg(c, fiber.StatusBadRequest, "name, email and password are required")
	}

	u, token, err := h.Auth.Register(c.Context(), name, email, body.Password, body.Phone)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "user.register", map[string]any{"user_id": u.ID.Hex()})
	return ok(c, fiber.StatusCreated, credentialed{Token: token, User: u})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}
	email, okEmail := validate.Email(body.Email)
	if !okEmail || body.Password == "" {
		return failMsg(c, fiber.StatusBadRequest, "email and password are required")
	}

	u, token, err := h.Auth.Login(c.Context(), email, body.Password)
	if err != nil {
		applog.Security(c, "auth.login_fail", map[string]any{"email": email})
		return fail(c, err)
	}
	applog.Audit(c, "user.login", map[string]any{"user_id": u.ID.Hex()})
	return ok(c, fiber.StatusOK, credentialed{Token: token, User: u})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token, _ := c.Locals("token").(string); token != "" {
		if err := h.Auth.Logout(c.Context(), token); err != nil {
			return fail(c, err)
		}
	}
	return ok(c, fiber.StatusOK, fiber.Map{"loggedOut": true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, currentUser(c))
}

// UpdateMe lets a user change name, phone and password. Email and role are
// admin-managed.
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	var body struct {
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		Password *string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid body")
	}

	set := bson.M{}
	if body.Name != nil {
		name, okName := validate.Name(*body.Name)
		if !okName {
			return failMsg(c, fiber.StatusBadRequest, "invalid name")
		}
		set["name"] = name
	}
	if body.Phone != nil {
		set["phone"] = *body.Phone
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
		return ok(c, fiber.StatusOK, currentUser(c))
	}

	u, err := h.Auth.Users.Update(c.Context(), currentUser(c).ID, set)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, u)
}
