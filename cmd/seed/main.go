package main

import (
	"context"
	"errors"
	"os"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	"storefront/internal/infra/logger"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/repository"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// 何度流しても同じ状態になる
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg)

	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("connect db")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("migrate")
	}

	ctx := context.Background()
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)

	email := getenv("SEED_ADMIN_EMAIL", "admin@example.com")
	password := getenv("SEED_ADMIN_PASSWORD", "ChangeMe!2024")
	if err := seedAdmin(ctx, userRepo, auth.NewBcryptPasswordHasher(cfg.BcryptCost), email, password); err != nil {
		log.WithError(err).Fatal("seed admin")
	}

	var count int64
	if err := gormDB.WithContext(ctx).Model(&model.Product{}).Count(&count).Error; err != nil {
		log.WithError(err).Fatal("count products")
	}
	if count > 0 {
		log.WithField("products", count).Info("catalog already seeded")
		return
	}
	for _, p := range sampleProducts() {
		created, err := productRepo.Create(ctx, p)
		if err != nil {
			log.WithError(err).WithField("name", p.Name).Fatal("seed product")
		}
		log.WithFields(logrus.Fields{"id": created.ID, "name": created.Name}).Info("product seeded")
	}
}

func seedAdmin(ctx context.Context, users repository.UserRepository, hasher auth.PasswordHasher, email, password string) error {
	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hashed, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	return users.Create(ctx, &model.User{
		Email:        email,
		Name:         "Admin",
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
		IsActive:     true,
	})
}

func sampleProducts() []model.Product {
	teeDiscount := decimal.NewFromInt(35)
	return []model.Product{
		{
			Name:        "Minimalist Tech Parka",
			Description: "Water-resistant shell with a clean silhouette.",
			Price:       decimal.NewFromInt(245),
			StockCount:  45,
			InStock:     true,
			Colors:      pq.StringArray{"#000000", "#565E63"},
			Sizes:       pq.StringArray{"S", "M", "L", "XL"},
			Images:      pq.StringArray{"https://images.example.com/parka.jpg"},
			Category:    "Outerwear",
			IsActive:    true,
		},
		{
			Name:          "Organic Cotton Basic Tee",
			Description:   "Everyday tee in heavyweight organic cotton.",
			Price:         decimal.NewFromInt(45),
			DiscountPrice: &teeDiscount,
			StockCount:    120,
			InStock:       true,
			Colors:        pq.StringArray{"#FFFFFF", "#000000"},
			Sizes:         pq.StringArray{"XS", "S", "M", "L"},
			Images:        pq.StringArray{"https://images.example.com/tee.jpg"},
			Category:      "Basics",
			IsActive:      true,
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
