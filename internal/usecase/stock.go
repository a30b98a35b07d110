package usecase

import (
	"context"
	"fmt"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

// 在庫の増減。注文確定とキャンセルから呼ぶ（どちらもTxの中）
type StockReconciler struct {
	log logrus.FieldLogger
}

func NewStockReconciler(log logrus.FieldLogger) *StockReconciler {
	return &StockReconciler{log: log}
}

// 足りなければ InsufficientStockError。何も書き換えない
func (s *StockReconciler) Decrement(ctx context.Context, inv repo.InventoryRepository, p model.Product, qty int64) error {
	if qty <= 0 {
		return NewValidationError("quantity", "must be greater than 0")
	}

	ok, err := inv.DecreaseStockIfEnough(ctx, p.ID, qty)
	if err != nil {
		return dbError(err)
	}
	if !ok {
		metrics.StockConflicts.Inc()
		s.log.WithFields(logrus.Fields{
			"product_id": p.ID,
			"requested":  qty,
			"last_seen":  p.StockCount,
		}).Warn("stock decrement rejected")
		return &InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   qty,
			Available:   p.StockCount,
		}
	}
	return nil
}

// 注文明細ぶん在庫を戻して、履歴を残す
func (s *StockReconciler) Restock(ctx context.Context, inv repo.InventoryRepository, actorUserID int64, o model.Order, items []model.OrderItem) error {
	orderID := o.ID
	for _, it := range items {
		if err := inv.IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
			return dbError(err)
		}
		if err := inv.CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   it.ProductID,
			AdminUserID: actorUserID,
			OrderID:     &orderID,
			Delta:       it.Quantity,
			Reason:      fmt.Sprintf("order %s cancelled", o.OrderNumber),
		}); err != nil {
			return dbError(err)
		}
	}
	return nil
}
