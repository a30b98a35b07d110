package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{uc: uc}
}

func (h *WishlistHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/wishlist", h.list)
	g.GET("/wishlist/:productId", h.contains)
	g.POST("/wishlist/:productId", h.add)
	g.DELETE("/wishlist/:productId", h.remove)
}

func (h *WishlistHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	items, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

func (h *WishlistHandler) contains(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	pid, ok := parseIDParam(c, "productId")
	if !ok {
		return badRequest(c, "invalid productId")
	}
	in, err := h.uc.Contains(c.Request().Context(), userID, pid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"productId": pid, "inWishlist": in})
}

// 2回目も200
func (h *WishlistHandler) add(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	pid, ok := parseIDParam(c, "productId")
	if !ok {
		return badRequest(c, "invalid productId")
	}
	if err := h.uc.Add(c.Request().Context(), userID, pid); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"productId": pid, "inWishlist": true})
}

func (h *WishlistHandler) remove(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	pid, ok := parseIDParam(c, "productId")
	if !ok {
		return badRequest(c, "invalid productId")
	}
	if err := h.uc.Remove(c.Request().Context(), userID, pid); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"productId": pid, "inWishlist": false})
}
