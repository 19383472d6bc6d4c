package middleware

// identity.go holds helpers shared across middleware files for pulling the
// authenticated user out of the Echo context.  JWTAuth stores raw claim
// values, so the subject may arrive as a float64 (JSON number), a string,
// or be absent entirely for guest traffic.

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a stable string identifier for the requesting user,
// or "anon" when the request carries no authenticated subject.  Used by the
// rate limiter to build per-user bucket keys.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case nil:
		return "anon"
	case string:
		if v != "" {
			return v
		}
		return "anon"
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
