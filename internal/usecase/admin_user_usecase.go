package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AdminUserUsecase struct {
	users repo.UserRepository
	audit repo.AuditLogRepository
}

func NewAdminUserUsecase(users repo.UserRepository, audit repo.AuditLogRepository) *AdminUserUsecase {
	return &AdminUserUsecase{users: users, audit: audit}
}

type UserListOutput struct {
	Items []model.User `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func (u *AdminUserUsecase) List(ctx context.Context, actor Actor, page, limit int) (UserListOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return UserListOutput{}, err
	}
	page, limit = normalizePage(page, limit)
	users, total, err := u.users.List(ctx, page, limit)
	if err != nil {
		return UserListOutput{}, dbError(err)
	}
	return UserListOutput{Items: users, Total: total, Page: page, Limit: limit}, nil
}

// 対象ユーザーのトークンを全部無効化
func (u *AdminUserUsecase) ForceLogout(ctx context.Context, actor Actor, targetUserID int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	err := u.users.IncrementTokenVersion(ctx, targetUserID)
	if errors.Is(err, repo.ErrNotFound) {
		return &NotFoundError{Resource: "user", ID: targetUserID}
	}
	if err != nil {
		return dbError(err)
	}
	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  actor.UserID,
		Action:       model.AuditActionForceLogout,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
	}); err != nil {
		return dbError(err)
	}
	return nil
}
