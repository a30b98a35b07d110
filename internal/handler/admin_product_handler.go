package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理者の商品・在庫操作
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

type UpdateStockRequest struct {
	StockCount *int64 `json:"stockCount" validate:"required,gte=0"`
	Reason     string `json:"reason" validate:"required,max=255"`
}

func (h *AdminProductHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/products", h.list)
	admin.POST("/products", h.create)
	admin.PUT("/products/:id", h.update)
	admin.DELETE("/products/:id", h.delete)
	admin.PATCH("/products/:id/stock", h.updateStock)
}

func (h *AdminProductHandler) list(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	in, err := listProductsInput(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.AdminListProducts(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) create(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.ProductInput
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) update(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req usecase.ProductInput
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), actor, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) delete(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), actor, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// 在庫は差分ではなく「現在値」で受け取る
func (h *AdminProductHandler) updateStock(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req UpdateStockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	if req.StockCount == nil {
		return badRequest(c, "stockCount is required")
	}

	if err := h.uc.AdminUpdateInventory(c.Request().Context(), actor, id, *req.StockCount, req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"productId": id, "stockCount": *req.StockCount})
}
