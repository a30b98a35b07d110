package repository

import "errors"

var (
	// 対象の行が無い
	ErrNotFound = errors.New("not found")

	// 楽観ロックの version 不一致（他の更新が先に入った）
	ErrVersionConflict = errors.New("version conflict")

	// 一意制約違反
	ErrDuplicate = errors.New("duplicate")
)
