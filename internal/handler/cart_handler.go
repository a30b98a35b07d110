package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartItemRequest struct {
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	Quantity  int64  `json:"quantity" validate:"gt=0"`
	Color     string `json:"color" validate:"max=32"`
	Size      string `json:"size" validate:"max=32"`
}

// 0以下は削除扱いなので validate はかけない
type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// ログイン済みグループに登録
func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/cart", h.getCart)
	g.DELETE("/cart", h.clear)
	g.POST("/cart/items", h.addItem)
	g.PATCH("/cart/items/:id", h.updateItem)
	g.PUT("/cart/items/:id", h.updateItem)
	g.DELETE("/cart/items/:id", h.removeItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.AddItem(c.Request().Context(), userID, usecase.AddCartItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Color:     req.Color,
		Size:      req.Size,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req UpdateCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.UpdateQuantity(c.Request().Context(), userID, itemID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), userID, itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.uc.Clear(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
