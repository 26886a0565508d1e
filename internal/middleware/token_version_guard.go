package middleware

import (
	"net/http"

	"app/internal/repository"

	"github.com/labstack/echo/v4"
)

// TokenVersionGuard はアクセストークンのtvクレームをDBのtoken_versionと突き合わせる。
// ログアウトでtoken_versionが進むため、古いトークンを持ったままの
// レジ端末はここで強制サインアウトになる。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil || user == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			// 無効化されたオーナーは署名の正しいトークンでも締め出す
			if !user.IsActive {
				return c.JSON(http.StatusUnauthorized, errorJSON("account disabled"))
			}

			// tvの不一致は他端末でのログアウト後に残った古いトークン
			if user.TokenVersion != tv {
				return c.JSON(http.StatusUnauthorized, errorJSON("session expired"))
			}

			return next(c)
		}
	}
}
