package main

import (
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/logger"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/middleware"
	"storefront/internal/server"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log := logger.New(cfg)
	//handler の 5xx ログもこの設定で出す
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(log.GetLevel())

	//DB接続
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("connect db")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("migrate")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartItemGormRepository(gormDB)
	wishlistRepo := infraRepo.NewWishlistGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB, log)

	//Usecase生成
	stock := usecase.NewStockReconciler(log)
	pricing := usecase.Pricing{TaxRate: cfg.TaxRate.Decimal, ShippingFee: cfg.ShippingFee.Decimal}

	productUC := usecase.NewProductUsecase(productRepo, txm)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, log)
	orderUC := usecase.NewOrderUsecase(txm, addressRepo, stock, pricing, log)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, stock, log)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo, productRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, auditRepo)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//bcrypt（会員登録：Hash / ログイン：Verify）
	clock := auth.RealClock{}
	registerUC := auth.NewRegisterUserUsecase(userRepo, auth.NewBcryptPasswordHasher(cfg.BcryptCost), clock)
	loginUC := auth.NewLoginUsecase(userRepo, auth.NewBcryptPasswordVerifier(), auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL), clock)
	sessionUC := auth.NewSessionUsecase(userRepo)

	//Handler生成
	h := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, sessionUC),
		Product:      handler.NewProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		Wishlist:     handler.NewWishlistHandler(wishlistUC),
		Address:      handler.NewAddressHandler(addressUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:    handler.NewAdminUserHandler(adminUserUC),
		AuditLog:     handler.NewAuditLogHandler(auditUC),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	stopCleanup := limiter.StartCleanup(10 * time.Minute)
	defer stopCleanup()

	e := server.New(cfg, log)
	server.Register(e, cfg, userRepo, limiter, h)

	//Server起動
	if err := server.Start(e, cfg.Addr(), log); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
