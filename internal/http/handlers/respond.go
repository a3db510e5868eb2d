package handlers

import (
	"errors"

	"mercado/internal/domain"
	applog "mercado/internal/log"

	"github.com/gofiber/fiber/v2"
)

// Every response is shaped {success, data} or {success:false, error}.

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

func failMsg(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

// fail maps a business error onto the HTTP taxonomy. Unexpected storage
// failures become an opaque 500; their message is not part of the API.
func fail(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status == fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
		return failMsg(c, status, "internal server error")
	}
	return failMsg(c, status, err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrInvalidID):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrBadCreds):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrNotEligible),
		errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrReviewNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrCategoryInUse):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}
