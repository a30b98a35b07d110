package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// 会員登録の入力
type RegisterUserInput struct {
	Email    string
	Name     string
	Password string
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.User
}

var (
	// 入力が不正
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrNameRequired       = errors.New("name is required")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrWeakPassword       = errors.New("weak password")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	clock    Clock
}

// DI
func NewRegisterUserUsecase(userRepo repository.UserRepository, hasher PasswordHasher, clock Clock) *RegisterUserUsecase {
	return &RegisterUserUsecase{userRepo: userRepo, hasher: hasher, clock: clock}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	email := normalizeEmail(in.Email)
	if !isValidEmailFormat(email) {
		return out, ErrInvalidEmailFormat
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return out, ErrNameRequired
	}
	if len(in.Password) < minPasswordLength {
		return out, ErrPasswordTooShort
	}
	// よくある弱いパスワードの拒否
	if isWeakPassword(in.Password) {
		return out, ErrWeakPassword
	}

	// email重複チェック（最終的にはunique制約で守る）
	_, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return out, ErrEmailAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return out, err
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed, // 平文は保存しない
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return out, ErrEmailAlreadyExists
		}
		return out, err
	}

	out.User = *user
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// メールチェック
func isValidEmailFormat(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

var weakPasswords = map[string]struct{}{
	"password":     {},
	"password1":    {},
	"password123":  {},
	"123456789012": {},
	"1234567890":   {},
	"12345678":     {},
	"qwertyuiop":   {},
	"letmein1":     {},
	"admin123":     {},
	"iloveyou":     {},
}

func isWeakPassword(password string) bool {
	_, ok := weakPasswords[strings.ToLower(strings.TrimSpace(password))]
	return ok
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
