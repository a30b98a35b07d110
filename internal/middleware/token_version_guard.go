package middleware

import (
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのtvとDBのtoken_versionが一致するか確認。
// ログアウト・強制ログアウト後の古いトークンと、停止ユーザーはここで401。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return unauthorizedJSON(c)
			}
			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return unauthorizedJSON(c)
			}

			//DBから最新のuserを取得する
			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil || user == nil {
				return unauthorizedJSON(c)
			}
			if !user.IsActive || user.TokenVersion != tv {
				return unauthorizedJSON(c)
			}

			// ロールはDBの値を正とする
			c.Set(CtxUserRoleKey, string(user.Role))
			return next(c)
		}
	}
}
