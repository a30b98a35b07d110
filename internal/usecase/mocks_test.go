package usecase_test

import (
	"context"
	"io"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func silentLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// =====================
// TxManager / TxRepos
// =====================

// fn がエラーを返したら RolledBack を立てる（実DBならロールバック）
type TxManagerMock struct {
	mock.Mock
	Repos      repo.TxRepos
	RolledBack bool
	Committed  bool
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	if err := fn(m.Repos); err != nil {
		m.RolledBack = true
		return err
	}
	m.Committed = true
	return nil
}

type TxReposMock struct {
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	cartItems  *CartItemRepoMock
	inventory  *InventoryRepoMock
	products   *ProductRepoMock
	auditLogs  *AuditLogRepoMock
}

func newTxRepos() *TxReposMock {
	return &TxReposMock{
		orders:     &OrderRepoMock{},
		orderItems: &OrderItemRepoMock{},
		cartItems:  &CartItemRepoMock{},
		inventory:  &InventoryRepoMock{},
		products:   &ProductRepoMock{},
		auditLogs:  &AuditLogRepoMock{},
	}
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *TxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, userID, itemID int64) (model.CartItem, error) {
	args := m.Called(ctx, userID, itemID)
	item, _ := args.Get(0).(model.CartItem)
	return item, args.Error(1)
}

func (m *CartItemRepoMock) FindLine(ctx context.Context, userID, productID int64, color, size string) (model.CartItem, bool, error) {
	args := m.Called(ctx, userID, productID, color, size)
	item, _ := args.Get(0).(model.CartItem)
	return item, args.Bool(1), args.Error(2)
}

func (m *CartItemRepoMock) UpsertLine(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	args := m.Called(ctx, item)
	out, _ := args.Get(0).(model.CartItem)
	return out, args.Error(1)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, userID, itemID, qty, expectedVersion int64) error {
	args := m.Called(ctx, userID, itemID, qty, expectedVersion)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, userID, itemID int64) error {
	args := m.Called(ctx, userID, itemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	args := m.Called(ctx, ids)
	out, _ := args.Get(0).(map[int64]model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]string)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) (int64, error) {
	args := m.Called(ctx, productID, newStock)
	return args.Get(0).(int64), args.Error(1)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	return m.Called(ctx, productID, qty).Error(0)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return m.Called(ctx, adj).Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) error {
	return m.Called(ctx, orderID, from, to).Error(0)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID, items)
	out, _ := args.Get(0).([]model.OrderItem)
	return out, args.Error(1)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type AuditLogRepoMock struct{ mock.Mock }

func (m *AuditLogRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditLogRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, a model.Address) (model.Address, error) {
	args := m.Called(ctx, a)
	out, _ := args.Get(0).(model.Address)
	return out, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]model.Address)
	return out, args.Error(1)
}

func (m *AddressRepoMock) FindForUser(ctx context.Context, userID, addressID int64) (model.Address, error) {
	args := m.Called(ctx, userID, addressID)
	out, _ := args.Get(0).(model.Address)
	return out, args.Error(1)
}

func (m *AddressRepoMock) ShippingSnapshot(ctx context.Context, userID, addressID int64) (string, error) {
	args := m.Called(ctx, userID, addressID)
	return args.String(0), args.Error(1)
}

func (m *AddressRepoMock) Update(ctx context.Context, a model.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *AddressRepoMock) Delete(ctx context.Context, userID, addressID int64) error {
	return m.Called(ctx, userID, addressID).Error(0)
}

func (m *AddressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	return m.Called(ctx, userID, addressID).Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *UserRepoMock) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, page, limit)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

type WishlistRepoMock struct{ mock.Mock }

func (m *WishlistRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.WishlistItem)
	return items, args.Error(1)
}

func (m *WishlistRepoMock) Add(ctx context.Context, userID, productID int64) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *WishlistRepoMock) Remove(ctx context.Context, userID, productID int64) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *WishlistRepoMock) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}
