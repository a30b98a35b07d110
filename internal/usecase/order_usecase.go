package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// 支払い方法
var paymentMethods = map[string]struct{}{
	"card":   {},
	"paypal": {},
	"cod":    {},
}

// 税率・送料
type Pricing struct {
	TaxRate     decimal.Decimal
	ShippingFee decimal.Decimal
}

func (p Pricing) Quote(subtotal decimal.Decimal) model.PriceBreakdown {
	return model.QuotePrice(subtotal, p.TaxRate, p.ShippingFee)
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
	stock     *StockReconciler
	pricing   Pricing
	log       logrus.FieldLogger
	now       func() time.Time
	newNumber func() string
}

func NewOrderUsecase(tx repo.TransactionManager, addresses repo.AddressRepository, stock *StockReconciler, pricing Pricing, log logrus.FieldLogger) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		addresses: addresses,
		stock:     stock,
		pricing:   pricing,
		log:       log,
		now:       time.Now,
		newNumber: newOrderNumber,
	}
}

// ORD-XXXXXXXXXXXX
func newOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(id[:12])
}

type PlaceOrderInput struct {
	ShippingAddress string
	AddressID       int64
	PaymentMethod   string
	IdempotencyKey  string
}

type OrderItemOutput struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	OrderNumber     string            `json:"orderNumber"`
	UserID          int64             `json:"userId"`
	Status          model.OrderStatus `json:"status"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	Tax             decimal.Decimal   `json:"tax"`
	ShippingFee     decimal.Decimal   `json:"shippingFee"`
	Total           decimal.Decimal   `json:"total"`
	ShippingAddress string            `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
	Items           []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 冪等キーの同時挿入に負けた
var errIdempotencyRace = errors.New("idempotency key raced")

// カートから注文を作る。在庫チェック→減算→注文作成→カート削除を1つのTxで行う。
// どこかで失敗したら何も残らない。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, unauthorized()
	}
	payment := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if _, ok := paymentMethods[payment]; !ok {
		return OrderOutput{}, NewValidationError("paymentMethod", "must be one of card, paypal, cod")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, NewValidationError("idempotencyKey", "too long")
	}

	shipping, err := u.resolveShippingAddress(ctx, userID, in)
	if err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return dbError(err)
			}
			if found {
				out = toOrderOutput(existing, existing.Items)
				return nil
			}
		}

		lines, err := r.CartItems().ListByUserID(ctx, userID)
		if err != nil {
			return dbError(err)
		}
		if len(lines) == 0 {
			return NewValidationError("cart", "cart is empty")
		}

		// 先に全明細を検証（ここで失敗すれば何も書いていない）
		checked, err := u.checkLines(ctx, r.Products(), lines)
		if err != nil {
			return err
		}

		for _, pid := range checked.order {
			if err := u.stock.Decrement(ctx, r.Inventory(), checked.products[pid], checked.required[pid]); err != nil {
				return err
			}
		}

		price := u.pricing.Quote(checked.subtotal)
		now := u.now()
		order := model.Order{
			OrderNumber:     u.newNumber(),
			UserID:          userID,
			Status:          model.OrderStatusProcessing,
			Subtotal:        price.Subtotal,
			Tax:             price.Tax,
			ShippingFee:     price.ShippingFee,
			Total:           price.Total,
			ShippingAddress: shipping,
			PaymentMethod:   payment,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if key != "" {
			order.IdempotencyKey = &key
		}

		orderID, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrDuplicate) && key != "" {
			return errIdempotencyRace
		}
		if err != nil {
			return dbError(err)
		}
		order.ID = orderID

		items, err := r.OrderItems().CreateBulk(ctx, orderID, checked.items)
		if err != nil {
			return dbError(err)
		}
		if err := r.CartItems().DeleteByUserID(ctx, userID); err != nil {
			return dbError(err)
		}

		out = toOrderOutput(order, items)
		return nil
	})

	if errors.Is(err, errIdempotencyRace) {
		// 先に入った方の注文を返す
		return u.findByIdempotencyKey(ctx, userID, key)
	}
	if err != nil {
		return OrderOutput{}, err
	}

	metrics.OrdersPlaced.Inc()
	u.log.WithFields(logrus.Fields{
		"user_id":      userID,
		"order_id":     out.ID,
		"order_number": out.OrderNumber,
		"total":        out.Total.StringFixed(2),
	}).Info("order placed")
	return out, nil
}

type checkedLines struct {
	order    []int64 // 最初に出てきた順
	required map[int64]int64
	products map[int64]model.Product
	items    []model.OrderItem
	subtotal decimal.Decimal
}

// 同じ商品の色違いは合算して在庫と比べる
func (u *OrderUsecase) checkLines(ctx context.Context, products repo.ProductRepository, lines []model.CartItem) (checkedLines, error) {
	c := checkedLines{
		required: map[int64]int64{},
		products: map[int64]model.Product{},
		items:    make([]model.OrderItem, 0, len(lines)),
		subtotal: decimal.Zero,
	}

	firstLine := map[int64]int64{}
	for _, l := range lines {
		if _, seen := c.required[l.ProductID]; !seen {
			c.order = append(c.order, l.ProductID)
			firstLine[l.ProductID] = l.ID
		}
		c.required[l.ProductID] += l.Quantity
	}

	for _, pid := range c.order {
		p, err := products.FindByID(ctx, pid)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
			// 販売終了の行は黙って落とさず、どの行を消せばいいかを返す
			return checkedLines{}, NewValidationError("cartItems", fmt.Sprintf(
				"item %d (product %d) is no longer available; remove it from the cart", firstLine[pid], pid))
		}
		if err != nil {
			return checkedLines{}, dbError(err)
		}
		if p.StockCount < c.required[pid] {
			return checkedLines{}, &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   c.required[pid],
				Available:   p.StockCount,
			}
		}
		c.products[pid] = p
	}

	//スナップショット
	for _, l := range lines {
		p := c.products[l.ProductID]
		item := model.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.EffectivePrice(),
			Quantity:    l.Quantity,
			Color:       l.Color,
			Size:        l.Size,
			Image:       p.PrimaryImage(),
		}
		c.items = append(c.items, item)
		c.subtotal = c.subtotal.Add(item.LineTotal())
	}
	return c, nil
}

// 住所IDがあればそちらを優先
func (u *OrderUsecase) resolveShippingAddress(ctx context.Context, userID int64, in PlaceOrderInput) (string, error) {
	if in.AddressID > 0 {
		snapshot, err := u.addresses.ShippingSnapshot(ctx, userID, in.AddressID)
		if errors.Is(err, repo.ErrNotFound) {
			//他人の住所も「存在しない扱い」
			return "", &NotFoundError{Resource: "address", ID: in.AddressID}
		}
		if err != nil {
			return "", dbError(err)
		}
		return snapshot, nil
	}

	s := strings.TrimSpace(in.ShippingAddress)
	if s == "" {
		return "", NewValidationError("shippingAddress", "is required")
	}
	if len(s) > 1000 {
		return "", NewValidationError("shippingAddress", "too long")
	}
	return s, nil
}

func (u *OrderUsecase) findByIdempotencyKey(ctx context.Context, userID int64, key string) (OrderOutput, error) {
	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return dbError(err)
		}
		if !found {
			return &ConflictError{Message: "idempotency conflict"}
		}
		out = toOrderOutput(o, o.Items)
		return nil
	})
	return out, err
}

// 新しい順
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, unauthorized()
	}
	page, limit = normalizePage(page, limit)

	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return dbError(err)
		}
		out = toOrderList(orders, total, page, limit)
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, unauthorized()
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && o.UserID != userID) {
			//他人の注文は「存在しない扱い」にする
			return &NotFoundError{Resource: "order", ID: orderID}
		}
		if err != nil {
			return dbError(err)
		}
		out = toOrderOutput(o, o.Items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func toOrderList(orders []model.Order, total int64, page, limit int) OrderListOutput {
	items := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderOutput(o, o.Items))
	}
	return OrderListOutput{Items: items, Total: total, Page: page, Limit: limit}
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Image:     it.Image,
			Color:     it.Color,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.LineTotal(),
		})
	}

	return OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          o.Status,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		ShippingFee:     o.ShippingFee,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           outItems,
	}
}
