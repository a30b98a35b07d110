package auth

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email    string
	Password string
}

type AccessToken struct {
	AccessToken  string    `json:"accessToken"`
	ExpiresIn    int       `json:"expiresIn"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenVersion int       `json:"tokenVersion"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  model.User  `json:"user"`
	Token AccessToken `json:"token"`
}

// メールまたはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// 停止済みユーザー
var ErrUserInactive = errors.New("user is inactive")

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type LoginUsecase struct {
	userRepo repository.UserRepository
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewLoginUsecase(userRepo repository.UserRepository, verifier PasswordVerifier, issuer AccessTokenIssuer, clock Clock) *LoginUsecase {
	return &LoginUsecase{userRepo: userRepo, verifier: verifier, issuer: issuer, clock: clock}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	user, err := u.userRepo.FindByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return out, ErrInvalidCredentials
	}
	if err != nil {
		return out, err
	}

	//パスワード照合を先に（停止ユーザーかどうかを漏らさない）
	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return out, ErrInvalidCredentials
	}
	if !user.IsActive {
		return out, ErrUserInactive
	}

	now := u.clock.Now()
	token, exp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return out, err
	}

	//最終ログイン時刻更新
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, err
	}

	out.User = *user
	out.Token = AccessToken{
		AccessToken:  token,
		ExpiresIn:    int(exp.Sub(now).Seconds()),
		ExpiresAt:    exp,
		TokenVersion: user.TokenVersion,
	}
	return out, nil
}
