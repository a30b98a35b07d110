package server

import (
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Wishlist     *handler.WishlistHandler
	Address      *handler.AddressHandler
	AdminProduct *handler.AdminProductHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminUser    *handler.AdminUserHandler
	AuditLog     *handler.AuditLogHandler
}

// /api       公開
// /api       ログイン必須（AuthJWT → TokenVersionGuard → レート制限）
// /api/admin 管理者のみ
func Register(e *echo.Echo, cfg config.Config, users repository.UserRepository, limiter *middleware.RateLimiter, h Handlers) {
	api := e.Group("/api")

	authed := api.Group("",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(users),
		limiter.Middleware(),
	)
	admin := api.Group("/admin",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(users),
		middleware.AdminRoleGuard(),
		limiter.Middleware(),
	)

	h.Auth.RegisterRoutes(api, authed)
	h.Product.RegisterRoutes(api)

	h.Cart.RegisterRoutes(authed)
	h.Order.RegisterRoutes(authed)
	h.Wishlist.RegisterRoutes(authed)
	h.Address.RegisterRoutes(authed)

	h.AdminProduct.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)
	h.AdminUser.RegisterRoutes(admin)
	h.AuditLog.RegisterRoutes(admin)
}
