package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userIDFrom extracts the authenticated user ID stored by the JWT
// middleware.  JWT numeric claims decode as float64; older tokens may
// carry the subject as a string.  Returns 0 when no usable subject is
// present.
func userIDFrom(c echo.Context) uint64 {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v)
	case uint64:
		return v
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// pathID parses a numeric :id-style path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
