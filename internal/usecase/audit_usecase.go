package usecase

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

func (u *AuditLogUsecase) List(ctx context.Context, actor Actor, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return nil, NewValidationError("from", "must be before to")
	}
	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, dbError(err)
	}
	return logs, nil
}
