package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// シリアライズ失敗・デッドロックのときに Tx ごとやり直す回数
const txMaxAttempts = 3

// やり直しの前に待つ時間（attempt 倍）
var txRetryBackoff = 20 * time.Millisecond

// tx を握った repo 一式
type txRepos struct {
	tx *gorm.DB
}

func (r txRepos) Orders() repo.OrderRepository         { return NewOrderGormRepository(r.tx) }
func (r txRepos) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(r.tx) }
func (r txRepos) CartItems() repo.CartItemRepository   { return NewCartItemGormRepository(r.tx) }
func (r txRepos) Inventory() repo.InventoryRepository  { return NewInventoryGormRepository(r.tx) }
func (r txRepos) Products() repo.ProductRepository     { return NewProductGormRepository(r.tx) }
func (r txRepos) AuditLogs() repo.AuditLogRepository   { return NewAuditLogGormRepository(r.tx) }

type TxManagerGorm struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewTxManagerGorm(db *gorm.DB, log logrus.FieldLogger) *TxManagerGorm {
	return &TxManagerGorm{db: db, log: log}
}

// fn は最初から何度か呼ばれうる（Tx 外の状態を書き換えないこと）
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(txRepos{tx: tx})
		})
		if !shouldRetryTx(err) || attempt == txMaxAttempts {
			return err
		}

		metrics.TxRetries.Inc()
		tm.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"error":   err.Error(),
		}).Warn("transaction serialization failure, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * txRetryBackoff):
		}
	}
	return err
}

// fn 側で包まれていても pg のコードで見る
func shouldRetryTx(err error) bool {
	return isRetryable(err) || errors.Is(err, repo.ErrVersionConflict)
}
