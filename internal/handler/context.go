package handler

import (
	"errors"

	"app/internal/middleware"

	"github.com/labstack/echo/v4"
)

var errNoUser = errors.New("user not in context")

// AuthJWTが入れたuser_idを取り出す
func userIDFrom(c echo.Context) (int64, error) {
	raw := c.Get(middleware.CtxUserIDKey)
	userID, ok := raw.(int64)
	if !ok || userID <= 0 {
		return 0, errNoUser
	}
	return userID, nil
}
