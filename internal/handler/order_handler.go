package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// shippingAddress か addressId のどちらか
type PlaceOrderRequest struct {
	ShippingAddress string `json:"shippingAddress" validate:"max=1000"`
	AddressID       int64  `json:"addressId" validate:"gte=0"`
	PaymentMethod   string `json:"paymentMethod" validate:"required"`
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/orders", h.create)
	g.GET("/orders", h.list)
	g.GET("/orders/:id", h.detail)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req PlaceOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get(HeaderIdempotencyKey)

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		AddressID:       req.AddressID,
		PaymentMethod:   req.PaymentMethod,
		IdempotencyKey:  idemKey,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
