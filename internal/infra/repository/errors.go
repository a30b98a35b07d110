package repository

import (
	"errors"

	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// 直列化失敗・デッドロック。取り直せば通る
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// gorm のエラーをリポジトリ層のエラーへ
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repo.ErrDuplicate
	case isRetryable(err):
		return repo.ErrVersionConflict
	default:
		return err
	}
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}

// ページングの既定値
func pageOffset(page, limit, maxLimit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > maxLimit {
		limit = 20
	}
	return limit, (page - 1) * limit
}
