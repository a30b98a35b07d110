package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// version 不一致で取り直す回数
const cartUpdateMaxAttempts = 3

type CartUsecase struct {
	cartItems repo.CartItemRepository
	products  repo.ProductRepository
	log       logrus.FieldLogger
}

// DI
func NewCartUsecase(cartItems repo.CartItemRepository, products repo.ProductRepository, log logrus.FieldLogger) *CartUsecase {
	return &CartUsecase{cartItems: cartItems, products: products, log: log}
}

type AddCartItemInput struct {
	ProductID int64
	Quantity  int64
	Color     string
	Size      string
}

type CartLineOutput struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	// 商品が非公開・削除済みなら false（合計に含めない）
	Available bool `json:"available"`
}

type CartTotals struct {
	TotalItems  int64           `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type CartOutput struct {
	Items []CartLineOutput `json:"items"`
	CartTotals
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, unauthorized()
	}
	return u.buildCart(ctx, userID)
}

func (u *CartUsecase) GetTotals(ctx context.Context, userID int64) (CartTotals, error) {
	out, err := u.GetCart(ctx, userID)
	if err != nil {
		return CartTotals{}, err
	}
	return out.CartTotals, nil
}

// 同じ (商品, 色, サイズ) は数量を合算
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartItemInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, unauthorized()
	}
	if in.ProductID <= 0 {
		return CartOutput{}, NewValidationError("productId", "is required")
	}
	if in.Quantity <= 0 {
		return CartOutput{}, NewValidationError("quantity", "must be greater than 0")
	}
	p, err := u.activeProduct(ctx, in.ProductID)
	if err != nil {
		return CartOutput{}, err
	}
	// 行のキーは商品側の表記で持つ（"l" と "L" を同じ行にする）
	color, ok := p.CanonicalColor(in.Color)
	if !ok {
		return CartOutput{}, NewValidationError("color", "is not offered for this product")
	}
	size, ok := p.CanonicalSize(in.Size)
	if !ok {
		return CartOutput{}, NewValidationError("size", "is not offered for this product")
	}

	existing, _, err := u.cartItems.FindLine(ctx, userID, p.ID, color, size)
	if err != nil {
		return CartOutput{}, dbError(err)
	}
	// 最終的な在庫確保は注文確定時。ここでは明らかな超過だけ弾く
	if !p.InStock || existing.Quantity+in.Quantity > p.StockCount {
		return CartOutput{}, &InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   existing.Quantity + in.Quantity,
			Available:   p.StockCount,
		}
	}

	if _, err := u.cartItems.UpsertLine(ctx, model.CartItem{
		UserID:    userID,
		ProductID: p.ID,
		Color:     color,
		Size:      size,
		Quantity:  in.Quantity,
	}); err != nil {
		return CartOutput{}, dbError(err)
	}

	return u.buildCart(ctx, userID)
}

// qty <= 0 は削除
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, itemID int64, qty int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, unauthorized()
	}
	if itemID <= 0 {
		return CartOutput{}, NewValidationError("id", "invalid cart item id")
	}
	if qty <= 0 {
		return u.RemoveItem(ctx, userID, itemID)
	}

	for attempt := 1; attempt <= cartUpdateMaxAttempts; attempt++ {
		item, err := u.cartItems.FindByID(ctx, userID, itemID)
		if errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, &NotFoundError{Resource: "cart item", ID: itemID}
		}
		if err != nil {
			return CartOutput{}, dbError(err)
		}

		p, err := u.activeProduct(ctx, item.ProductID)
		if err != nil {
			return CartOutput{}, err
		}
		if qty > p.StockCount {
			return CartOutput{}, &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   qty,
				Available:   p.StockCount,
			}
		}

		err = u.cartItems.UpdateQuantity(ctx, userID, itemID, qty, item.Version)
		switch {
		case err == nil:
			return u.buildCart(ctx, userID)
		case errors.Is(err, repo.ErrVersionConflict):
			metrics.CartVersionConflicts.Inc()
			u.log.WithFields(logrus.Fields{
				"user_id":      userID,
				"cart_item_id": itemID,
				"attempt":      attempt,
			}).Info("cart line version conflict, retrying")
			continue
		case errors.Is(err, repo.ErrNotFound):
			return CartOutput{}, &NotFoundError{Resource: "cart item", ID: itemID}
		default:
			return CartOutput{}, dbError(err)
		}
	}

	return CartOutput{}, &ConflictError{Message: "cart item was modified concurrently, please retry"}
}

// 無い明細は NotFound（冪等にはしない）
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, itemID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, unauthorized()
	}
	err := u.cartItems.DeleteByID(ctx, userID, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, &NotFoundError{Resource: "cart item", ID: itemID}
	}
	if err != nil {
		return CartOutput{}, dbError(err)
	}
	return u.buildCart(ctx, userID)
}

// 空でも成功
func (u *CartUsecase) Clear(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return unauthorized()
	}
	if err := u.cartItems.DeleteByUserID(ctx, userID); err != nil {
		return dbError(err)
	}
	return nil
}

func (u *CartUsecase) activeProduct(ctx context.Context, productID int64) (model.Product, error) {
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return model.Product{}, &NotFoundError{Resource: "product", ID: productID}
	}
	if err != nil {
		return model.Product{}, dbError(err)
	}
	return p, nil
}

// 明細と現在の商品価格から組み立てる
func (u *CartUsecase) buildCart(ctx context.Context, userID int64) (CartOutput, error) {
	items, err := u.cartItems.ListByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, dbError(err)
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return CartOutput{}, dbError(err)
	}

	return assembleCart(items, products), nil
}

// 副作用なし
func assembleCart(items []model.CartItem, products map[int64]model.Product) CartOutput {
	out := CartOutput{
		Items:      make([]CartLineOutput, 0, len(items)),
		CartTotals: CartTotals{TotalAmount: decimal.Zero},
	}
	for _, it := range items {
		line := CartLineOutput{
			ID:        it.ID,
			ProductID: it.ProductID,
			Color:     it.Color,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: decimal.Zero,
			Subtotal:  decimal.Zero,
		}
		if p, ok := products[it.ProductID]; ok && p.IsActive {
			line.Name = p.Name
			line.Image = p.PrimaryImage()
			line.UnitPrice = p.EffectivePrice()
			line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
			line.Available = true

			out.TotalItems += it.Quantity
			out.TotalAmount = out.TotalAmount.Add(line.Subtotal)
		}
		out.Items = append(out.Items, line)
	}
	return out
}
