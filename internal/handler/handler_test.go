package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"
	reqvalidator "storefront/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, userID, itemID int64) (model.CartItem, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Get(0).(model.CartItem), args.Error(1)
}

func (m *CartItemRepoMock) FindLine(ctx context.Context, userID, productID int64, color, size string) (model.CartItem, bool, error) {
	args := m.Called(ctx, userID, productID, color, size)
	return args.Get(0).(model.CartItem), args.Bool(1), args.Error(2)
}

func (m *CartItemRepoMock) UpsertLine(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(model.CartItem), args.Error(1)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, userID, itemID, qty, expectedVersion int64) error {
	return m.Called(ctx, userID, itemID, qty, expectedVersion).Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, userID, itemID int64) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func (m *CartItemRepoMock) DeleteByUserID(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int64]model.Product), args.Error(1)
}

func (m *ProductRepoMock) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func parka() model.Product {
	return model.Product{
		ID:         1,
		Name:       "Minimalist Tech Parka",
		Price:      decimal.NewFromInt(245),
		StockCount: 45,
		InStock:    true,
		Colors:     pq.StringArray{"#000000", "#565E63"},
		Sizes:      pq.StringArray{"S", "M", "L"},
		Category:   "Outerwear",
		IsActive:   true,
	}
}

func silentLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// userID / role をコンテキストに入れてから各ハンドラを呼ぶ echo
func newTestEcho(userID int64, role model.Role) (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.Validator = reqvalidator.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	g := e.Group("/api", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID > 0 {
				c.Set(middleware.CtxUserIDKey, userID)
				c.Set(middleware.CtxUserRoleKey, string(role))
			}
			return next(c)
		}
	})
	return e, g
}

func doJSON(e *echo.Echo, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCartHandler_AddItem(t *testing.T) {
	cartItems := new(CartItemRepoMock)
	products := new(ProductRepoMock)
	e, g := newTestEcho(7, model.RoleUser)
	NewCartHandler(usecase.NewCartUsecase(cartItems, products, silentLogger())).RegisterRoutes(g)

	p := parka()
	products.On("FindByID", mock.Anything, int64(1)).Return(p, nil)
	cartItems.On("FindLine", mock.Anything, int64(7), int64(1), "#000000", "M").Return(model.CartItem{}, false, nil)
	cartItems.On("UpsertLine", mock.Anything, mock.MatchedBy(func(it model.CartItem) bool {
		return it.UserID == 7 && it.ProductID == 1 && it.Quantity == 1
	})).Return(model.CartItem{ID: 10, UserID: 7, ProductID: 1, Color: "#000000", Size: "M", Quantity: 1, Version: 1}, nil)
	cartItems.On("ListByUserID", mock.Anything, int64(7)).
		Return([]model.CartItem{{ID: 10, UserID: 7, ProductID: 1, Color: "#000000", Size: "M", Quantity: 1, Version: 1}}, nil)
	products.On("FindByIDs", mock.Anything, []int64{1}).Return(map[int64]model.Product{1: p}, nil)

	rec := doJSON(e, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":1,"color":"#000000","size":"M"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out usecase.CartOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(10), out.Items[0].ID)
	assert.Equal(t, int64(1), out.TotalItems)
	assert.True(t, out.TotalAmount.Equal(decimal.NewFromInt(245)))
	cartItems.AssertExpectations(t)
}

func TestCartHandler_AddItem_InsufficientStock(t *testing.T) {
	cartItems := new(CartItemRepoMock)
	products := new(ProductRepoMock)
	e, g := newTestEcho(7, model.RoleUser)
	NewCartHandler(usecase.NewCartUsecase(cartItems, products, silentLogger())).RegisterRoutes(g)

	products.On("FindByID", mock.Anything, int64(1)).Return(parka(), nil)
	cartItems.On("FindLine", mock.Anything, int64(7), int64(1), "#000000", "M").Return(model.CartItem{ID: 10, Quantity: 40}, true, nil)

	rec := doJSON(e, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":6,"color":"#000000","size":"M"}`, nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, CodeInsufficientStock, body.Code)
	assert.Equal(t, int64(1), body.ProductID)
	cartItems.AssertNotCalled(t, "UpsertLine", mock.Anything, mock.Anything)
}

func TestCartHandler_AddItem_ValidationError(t *testing.T) {
	e, g := newTestEcho(7, model.RoleUser)
	NewCartHandler(usecase.NewCartUsecase(new(CartItemRepoMock), new(ProductRepoMock), silentLogger())).RegisterRoutes(g)

	rec := doJSON(e, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":0}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, CodeValidation, body.Code)
	assert.Equal(t, "quantity", body.Field)
}

func TestCartHandler_Unauthorized(t *testing.T) {
	e, g := newTestEcho(0, "")
	NewCartHandler(usecase.NewCartUsecase(new(CartItemRepoMock), new(ProductRepoMock), silentLogger())).RegisterRoutes(g)

	rec := doJSON(e, http.MethodGet, "/api/cart", "", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, CodeUnauthorized, decodeError(t, rec).Code)
}

func TestCartHandler_RemoveItem(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		e, g := newTestEcho(7, model.RoleUser)
		NewCartHandler(usecase.NewCartUsecase(new(CartItemRepoMock), new(ProductRepoMock), silentLogger())).RegisterRoutes(g)

		rec := doJSON(e, http.MethodDelete, "/api/cart/items/abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing line is 404", func(t *testing.T) {
		cartItems := new(CartItemRepoMock)
		e, g := newTestEcho(7, model.RoleUser)
		NewCartHandler(usecase.NewCartUsecase(cartItems, new(ProductRepoMock), silentLogger())).RegisterRoutes(g)
		cartItems.On("DeleteByID", mock.Anything, int64(7), int64(99)).Return(repo.ErrNotFound)

		rec := doJSON(e, http.MethodDelete, "/api/cart/items/99", "", nil)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, CodeNotFound, decodeError(t, rec).Code)
	})
}

func TestCartHandler_Clear(t *testing.T) {
	cartItems := new(CartItemRepoMock)
	e, g := newTestEcho(7, model.RoleUser)
	NewCartHandler(usecase.NewCartUsecase(cartItems, new(ProductRepoMock), silentLogger())).RegisterRoutes(g)
	cartItems.On("DeleteByUserID", mock.Anything, int64(7)).Return(nil)

	rec := doJSON(e, http.MethodDelete, "/api/cart", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestOrderHandler_Create_RequiresPaymentMethod(t *testing.T) {
	e, g := newTestEcho(7, model.RoleUser)
	NewOrderHandler(nil).RegisterRoutes(g)

	rec := doJSON(e, http.MethodPost, "/api/orders", `{"shippingAddress":"1 Main St"}`, map[string]string{HeaderIdempotencyKey: "k-1"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, CodeValidation, body.Code)
	assert.Equal(t, "paymentMethod", body.Field)
}

func TestOrderHandler_Detail_InvalidID(t *testing.T) {
	e, g := newTestEcho(7, model.RoleUser)
	NewOrderHandler(nil).RegisterRoutes(g)

	rec := doJSON(e, http.MethodGet, "/api/orders/0", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminOrderHandler_UpdateStatus_Forbidden(t *testing.T) {
	e, g := newTestEcho(7, model.RoleUser)
	NewAdminOrderHandler(usecase.NewAdminOrderUsecase(nil, nil, silentLogger())).RegisterRoutes(g)

	rec := doJSON(e, http.MethodPatch, "/api/orders/5/status", `{"status":"shipped"}`, nil)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, CodeForbidden, decodeError(t, rec).Code)
}

func TestAdminOrderHandler_List_BadQuery(t *testing.T) {
	e, g := newTestEcho(1, model.RoleAdmin)
	NewAdminOrderHandler(usecase.NewAdminOrderUsecase(nil, nil, silentLogger())).RegisterRoutes(g)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"unknown status", "?status=lost", "status"},
		{"from after to", "?from=2026-02-01&to=2026-01-01", "from"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodGet, "/api/orders"+tt.query, "", nil)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decodeError(t, rec).Field)
		})
	}

	rec := doJSON(e, http.MethodGet, "/api/orders?from=yesterday", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHandler_List_BadPrice(t *testing.T) {
	e, g := newTestEcho(0, "")
	NewProductHandler(usecase.NewProductUsecase(new(ProductRepoMock), nil)).RegisterRoutes(g)

	rec := doJSON(e, http.MethodGet, "/api/products?minPrice=abc", "", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "minPrice", decodeError(t, rec).Field)
}

func TestProductHandler_Categories(t *testing.T) {
	products := new(ProductRepoMock)
	e, g := newTestEcho(0, "")
	NewProductHandler(usecase.NewProductUsecase(products, nil)).RegisterRoutes(g)
	products.On("Categories", mock.Anything).Return([]string{"Basics", "Outerwear"}, nil)

	rec := doJSON(e, http.MethodGet, "/api/products/categories", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":["Basics","Outerwear"]}`, rec.Body.String())
}
