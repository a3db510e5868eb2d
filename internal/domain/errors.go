package domain

import "errors"

// Business errors surfaced by services and translated to HTTP statuses at the
// handler layer. Storage failures that match none of these map to 500.
var (
	ErrBadCreds = errors.New("invalid email or password")

	// Validation (400)
	ErrInvalidQuantity = errors.New("qty must be a positive integer")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrMissingFields   = errors.New("missing required fields")
	ErrInvalidID       = errors.New("invalid id")

	// Not found (404)
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrLineNotFound     = errors.New("item is not in the cart")
	ErrOrderNotFound    = errors.New("order not found")
	ErrReviewNotFound   = errors.New("review not found")

	// Conflict (409)
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicate         = errors.New("duplicate: unique value already exists")
	ErrCategoryInUse     = errors.New("category has associated products")

	// Forbidden (403)
	ErrNotEligible = errors.New("only buyers of this product may review it")
	ErrForbidden   = errors.New("owner or admin only")
)
