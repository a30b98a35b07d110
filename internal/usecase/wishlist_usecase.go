package usecase

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type WishlistUsecase struct {
	wishlist repo.WishlistRepository
	products repo.ProductRepository
}

func NewWishlistUsecase(wishlist repo.WishlistRepository, products repo.ProductRepository) *WishlistUsecase {
	return &WishlistUsecase{wishlist: wishlist, products: products}
}

type WishlistEntry struct {
	ProductID int64          `json:"productId"`
	AddedAt   time.Time      `json:"addedAt"`
	Product   *model.Product `json:"product,omitempty"`
}

// 新しい順。削除済み商品は product なしで返す
func (u *WishlistUsecase) List(ctx context.Context, userID int64) ([]WishlistEntry, error) {
	if userID <= 0 {
		return nil, unauthorized()
	}
	items, err := u.wishlist.ListByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, dbError(err)
	}

	out := make([]WishlistEntry, 0, len(items))
	for _, it := range items {
		e := WishlistEntry{ProductID: it.ProductID, AddedAt: it.CreatedAt}
		if p, ok := products[it.ProductID]; ok && p.IsActive {
			p := p
			e.Product = &p
		}
		out = append(out, e)
	}
	return out, nil
}

// 既にあっても成功
func (u *WishlistUsecase) Add(ctx context.Context, userID, productID int64) error {
	if userID <= 0 {
		return unauthorized()
	}
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return &NotFoundError{Resource: "product", ID: productID}
	}
	if err != nil {
		return dbError(err)
	}
	if err := u.wishlist.Add(ctx, userID, productID); err != nil {
		return dbError(err)
	}
	return nil
}

// 無くても成功
func (u *WishlistUsecase) Remove(ctx context.Context, userID, productID int64) error {
	if userID <= 0 {
		return unauthorized()
	}
	if err := u.wishlist.Remove(ctx, userID, productID); err != nil {
		return dbError(err)
	}
	return nil
}

func (u *WishlistUsecase) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	if userID <= 0 {
		return false, unauthorized()
	}
	ok, err := u.wishlist.Contains(ctx, userID, productID)
	if err != nil {
		return false, dbError(err)
	}
	return ok, nil
}
