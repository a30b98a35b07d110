package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

type AdminOrderUsecase struct {
	tx    repo.TransactionManager
	stock *StockReconciler
	log   logrus.FieldLogger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, stock *StockReconciler, log logrus.FieldLogger) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, stock: stock, log: log}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 全ユーザーの注文（新しい順）
func (u *AdminOrderUsecase) List(ctx context.Context, actor Actor, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return OrderListOutput{}, err
	}
	if f.Status != "" {
		st, ok := model.ParseOrderStatus(f.Status)
		if !ok {
			return OrderListOutput{}, NewValidationError("status", "unknown order status")
		}
		f.Status = string(st)
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return OrderListOutput{}, NewValidationError("from", "must be before to")
	}
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)

	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return dbError(err)
		}
		out = toOrderList(orders, total, f.Page, f.Limit)
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// ステータス更新（cancelled なら在庫戻し）
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actor Actor, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return OrderOutput{}, err
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	next, ok := model.ParseOrderStatus(in.Status)
	if !ok {
		return OrderOutput{}, NewValidationError("status", "must be one of processing, shipped, delivered, cancelled")
	}

	var (
		out  OrderOutput
		from model.OrderStatus
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "order", ID: orderID}
		}
		if err != nil {
			return dbError(err)
		}

		from = o.Status
		if !from.CanTransitionTo(next) {
			return &InvalidTransitionError{From: from, To: next}
		}

		// 読んだ時点のステータスのときだけ書く。負けた側は在庫に触らない
		err = r.Orders().UpdateStatus(ctx, orderID, from, next)
		if errors.Is(err, repo.ErrVersionConflict) {
			return &ConflictError{Message: "order status was changed concurrently"}
		}
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "order", ID: orderID}
		}
		if err != nil {
			return dbError(err)
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return dbError(err)
		}
		if next == model.OrderStatusCancelled {
			if err := u.stock.Restock(ctx, r.Inventory(), actor.UserID, o, items); err != nil {
				return err
			}
		}

		if err := writeAudit(ctx, r, actor, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID,
			map[string]string{"status": string(from)},
			map[string]string{"status": string(next)},
		); err != nil {
			return err
		}

		o.Status = next
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	metrics.OrderStatusTransitions.WithLabelValues(string(from), string(next)).Inc()
	u.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     from,
		"to":       next,
		"actor_id": actor.UserID,
	}).Info("order status changed")
	return out, nil
}
