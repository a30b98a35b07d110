package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AddressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) *AddressGormRepository {
	return &AddressGormRepository{db: db}
}

func (r *AddressGormRepository) owned(ctx context.Context, userID, addressID int64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Address{}).Where("id = ? AND user_id = ?", addressID, userID)
}

func (r *AddressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Address{}).
		Where("user_id = ?", address.UserID).
		Count(&n).Error; err != nil {
		return model.Address{}, translate(err)
	}
	address.IsDefault = n == 0

	err := translate(r.db.WithContext(ctx).Create(&address).Error)
	if errors.Is(err, repo.ErrDuplicate) && address.IsDefault {
		// 同時に「最初の1件」が入った。こちらは通常の住所にする
		address.ID = 0
		address.IsDefault = false
		err = translate(r.db.WithContext(ctx).Create(&address).Error)
	}
	if err != nil {
		return model.Address{}, err
	}
	return address, nil
}

func (r *AddressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	list := []model.Address{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *AddressGormRepository) FindForUser(ctx context.Context, userID, addressID int64) (model.Address, error) {
	var a model.Address
	if err := r.owned(ctx, userID, addressID).Take(&a).Error; err != nil {
		return model.Address{}, translate(err)
	}
	return a, nil
}

func (r *AddressGormRepository) ShippingSnapshot(ctx context.Context, userID, addressID int64) (string, error) {
	a, err := r.FindForUser(ctx, userID, addressID)
	if err != nil {
		return "", err
	}
	return a.Format(), nil
}

// is_default はここでは変えない（SetDefault 経由のみ）
func (r *AddressGormRepository) Update(ctx context.Context, address model.Address) error {
	result := r.owned(ctx, address.UserID, address.ID).
		Select("name", "line1", "line2", "city", "state", "postal_code", "country", "phone", "updated_at").
		Updates(address)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *AddressGormRepository) Delete(ctx context.Context, userID, addressID int64) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deleted []model.Address
		result := tx.Clauses(clause.Returning{Columns: []clause.Column{{Name: "is_default"}}}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Delete(&deleted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		if len(deleted) == 0 || !deleted[0].IsDefault {
			return nil
		}

		//デフォルトを引き継ぐ
		return tx.Exec(
			`UPDATE addresses SET is_default = TRUE
			 WHERE id = (SELECT id FROM addresses WHERE user_id = ? ORDER BY id ASC LIMIT 1)`,
			userID,
		).Error
	}))
}

// 外してから付ける（部分ユニーク索引 ux_addresses_default に先に当たらない順）
func (r *AddressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Address{}).
			Where("user_id = ? AND id <> ? AND is_default = TRUE", userID, addressID).
			Update("is_default", false).Error; err != nil {
			return err
		}

		result := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 他人の住所なら外した分も巻き戻る
			return repo.ErrNotFound
		}
		return nil
	}))
}
