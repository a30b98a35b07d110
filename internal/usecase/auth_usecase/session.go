package auth

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

// ログアウト・プロフィール
type SessionUsecase struct {
	userRepo repository.UserRepository
}

func NewSessionUsecase(userRepo repository.UserRepository) *SessionUsecase {
	return &SessionUsecase{userRepo: userRepo}
}

// token_version を上げて、発行済みトークンを全部無効にする
func (u *SessionUsecase) Logout(ctx context.Context, userID int64) error {
	err := u.userRepo.IncrementTokenVersion(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (u *SessionUsecase) Profile(ctx context.Context, userID int64) (model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return *user, nil
}

type UpdateProfileInput struct {
	Name  string
	Phone string
}

func (u *SessionUsecase) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (model.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.User{}, ErrNameRequired
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}

	user.Name = name
	user.Phone = strings.TrimSpace(in.Phone)
	if err := u.userRepo.Update(ctx, user); err != nil {
		return model.User{}, err
	}
	return *user, nil
}
