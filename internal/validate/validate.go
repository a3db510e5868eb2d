package validate

import (
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

func Email(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s) > 60 {
		return "", false
	}
	return s, true
}

// OID parses a route/body identifier into an ObjectID.
func OID(s string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return oid, err == nil
}

// Qty reports whether n is a usable line quantity (positive integer).
func Qty(n int) bool { return n >= 1 }

// Rating enforces the 1..5 review scale.
func Rating(n int) bool { return n >= 1 && n <= 5 }

// Password enforces a simple length window for registration.
func Password(s string) bool {
	return len(s) >= 6 && len(s) <= 72 // bcrypt input cap
}

// Page normalizes ?page=&limit= query values, clamping limit to avoid abuse.
func Page(pageStr, limitStr string) (page, limit int) {
	page, _ = strconv.Atoi(strings.TrimSpace(pageStr))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(strings.TrimSpace(limitStr))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
