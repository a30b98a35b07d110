package usecase

import "storefront/internal/domain/model"

// 操作しているユーザー（JWTから作る）
type Actor struct {
	UserID int64
	Role   model.Role
}

func (a Actor) IsAdmin() bool {
	return a.UserID > 0 && a.Role == model.RoleAdmin
}

func requireAdmin(a Actor) error {
	if a.UserID <= 0 {
		return unauthorized()
	}
	if !a.IsAdmin() {
		return &AuthorizationError{Message: "admin role required"}
	}
	return nil
}
