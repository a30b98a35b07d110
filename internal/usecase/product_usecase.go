package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, tx repo.TransactionManager) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo, tx: tx}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	return u.list(ctx, in, false)
}

// 管理画面用（非公開も含む）
func (u *ProductUsecase) AdminListProducts(ctx context.Context, actor Actor, in ListProductsInput) (ProductListOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return ProductListOutput{}, err
	}
	return u.list(ctx, in, true)
}

func (u *ProductUsecase) list(ctx context.Context, in ListProductsInput, includeInactive bool) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewValidationError("page", "must be >= 1")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewValidationError("limit", "must be between 1 and 100")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewValidationError("q", "too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewValidationError("minPrice", "must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewValidationError("maxPrice", "must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewValidationError("minPrice", "must be <= maxPrice")
	}
	switch in.Sort {
	case "", "newest", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewValidationError("sort", "must be one of newest, price_asc, price_desc")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:            in.Page,
		Limit:           in.Limit,
		Q:               strings.TrimSpace(in.Q),
		Category:        strings.TrimSpace(in.Category),
		MinPrice:        in.MinPrice,
		MaxPrice:        in.MaxPrice,
		Sort:            in.Sort,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		return ProductListOutput{}, dbError(err)
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *ProductUsecase) Categories(ctx context.Context) ([]string, error) {
	cats, err := u.productRepo.Categories(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	return cats, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return model.Product{}, &NotFoundError{Resource: "product", ID: productID}
	}
	if err != nil {
		return model.Product{}, dbError(err)
	}
	return p, nil
}

type ProductInput struct {
	Name          string           `json:"name" validate:"required,max=255"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	StockCount    int64            `json:"stockCount" validate:"gte=0"`
	Colors        []string         `json:"colors" validate:"dive,max=32"`
	Sizes         []string         `json:"sizes" validate:"dive,max=32"`
	Images        []string         `json:"images" validate:"dive,url"`
	Category      string           `json:"category" validate:"required,max=100"`
	IsActive      bool             `json:"isActive"`
}

// 割引は定価未満
func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return NewValidationError("category", "is required")
	}
	if !in.Price.IsPositive() {
		return NewValidationError("price", "must be greater than 0")
	}
	if in.DiscountPrice != nil {
		if in.DiscountPrice.IsNegative() {
			return NewValidationError("discountPrice", "must be >= 0")
		}
		if !in.DiscountPrice.LessThan(in.Price) {
			return NewValidationError("discountPrice", "must be less than price")
		}
	}
	if in.StockCount < 0 {
		return NewValidationError("stockCount", "must be >= 0")
	}
	return nil
}

func (in ProductInput) toModel() model.Product {
	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price.Round(2),
		StockCount:  in.StockCount,
		Colors:      pq.StringArray(trimAll(in.Colors)),
		Sizes:       pq.StringArray(trimAll(in.Sizes)),
		Images:      pq.StringArray(trimAll(in.Images)),
		Category:    strings.TrimSpace(in.Category),
		IsActive:    in.IsActive,
	}
	if in.DiscountPrice != nil {
		d := in.DiscountPrice.Round(2)
		p.DiscountPrice = &d
	}
	return p
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, actor Actor, in ProductInput) (model.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return model.Product{}, err
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := time.Now()
		p := in.toModel()
		p.CreatedAt = now
		p.UpdatedAt = now

		var err error
		created, err = r.Products().Create(ctx, p)
		if err != nil {
			return dbError(err)
		}
		return writeAudit(ctx, r, actor, model.AuditActionCreateProduct, model.AuditResourceProduct, created.ID, nil, created)
	})
	if err != nil {
		return model.Product{}, err
	}
	return created, nil
}

// 在庫は AdminUpdateInventory でだけ変える
func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, actor Actor, productID int64, in ProductInput) (model.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return model.Product{}, err
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	var updated model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "product", ID: productID}
		}
		if err != nil {
			return dbError(err)
		}

		p := in.toModel()
		p.ID = productID
		if err := r.Products().Update(ctx, p); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return &NotFoundError{Resource: "product", ID: productID}
			}
			return dbError(err)
		}

		updated, err = r.Products().FindByID(ctx, productID)
		if err != nil {
			return dbError(err)
		}
		return writeAudit(ctx, r, actor, model.AuditActionUpdateProduct, model.AuditResourceProduct, productID, before, updated)
	})
	if err != nil {
		return model.Product{}, err
	}
	return updated, nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, actor Actor, productID int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Products().SoftDelete(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "product", ID: productID}
		}
		if err != nil {
			return dbError(err)
		}
		return writeAudit(ctx, r, actor, model.AuditActionDeleteProduct, model.AuditResourceProduct, productID, nil, nil)
	})
}

// 在庫を「現在値」に更新し、調整履歴と監査ログを残す
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, actor Actor, productID int64, newStock int64, reason string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return NewValidationError("stockCount", "must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewValidationError("reason", "is required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		prev, err := r.Inventory().SetStock(ctx, productID, newStock)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "product", ID: productID}
		}
		if err != nil {
			return dbError(err)
		}

		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: actor.UserID,
			Delta:       newStock - prev,
			Reason:      reason,
			CreatedAt:   time.Now(),
		}); err != nil {
			return dbError(err)
		}

		return writeAudit(ctx, r, actor, model.AuditActionUpdateStock, model.AuditResourceProduct, productID,
			map[string]int64{"stockCount": prev},
			map[string]int64{"stockCount": newStock},
		)
	})
}

//「誰が」「何を」「どの対象に」「どう変えたか」を残す
func writeAudit(ctx context.Context, r repo.TxRepos, actor Actor, action model.AuditAction, rt model.AuditResourceType, id int64, before, after interface{}) error {
	entry := model.AuditLog{
		ActorUserID:  actor.UserID,
		Action:       action,
		ResourceType: rt,
		ResourceID:   id,
		CreatedAt:    time.Now(),
	}
	if before != nil {
		b, err := json.Marshal(before)
		if err != nil {
			return dbError(err)
		}
		entry.BeforeJSON = string(b)
	}
	if after != nil {
		b, err := json.Marshal(after)
		if err != nil {
			return dbError(err)
		}
		entry.AfterJSON = string(b)
	}
	if err := r.AuditLogs().Create(ctx, entry); err != nil {
		return dbError(err)
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
