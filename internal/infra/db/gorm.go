package db

import (
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
// 一意制約違反などは gorm.ErrDuplicatedKey に変換させる。
func Connect(cfg config.Config, log *logrus.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if !cfg.IsProd() && log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gormDB, nil
}

// 全テーブル
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Address{},
		&model.Product{},
		&model.CartItem{},
		&model.WishlistItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	}
}

func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(Models()...)
}
