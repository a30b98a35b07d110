package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.list)
	g.GET("/products/categories", h.categories)
	g.GET("/products/categories/:category", h.listByCategory)
	g.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	in, err := listProductsInput(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListPublicProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) listByCategory(c echo.Context) error {
	in, err := listProductsInput(c)
	if err != nil {
		return writeError(c, err)
	}
	in.Category = c.Param("category")

	out, err := h.uc.ListPublicProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) categories(c echo.Context) error {
	cats, err := h.uc.Categories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"items": cats})
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// ?page=&limit=&q=&category=&minPrice=&maxPrice=&sort=
func listProductsInput(c echo.Context) (usecase.ListProductsInput, error) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return usecase.ListProductsInput{}, usecase.NewValidationError("page", "must be a number")
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return usecase.ListProductsInput{}, usecase.NewValidationError("limit", "must be a number")
	}

	in := usecase.ListProductsInput{
		Page:     page,
		Limit:    limit,
		Q:        c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
	}

	var err error
	if in.MinPrice, err = decimalQuery(c, "minPrice"); err != nil {
		return usecase.ListProductsInput{}, err
	}
	if in.MaxPrice, err = decimalQuery(c, "maxPrice"); err != nil {
		return usecase.ListProductsInput{}, err
	}
	return in, nil
}

func decimalQuery(c echo.Context, name string) (*decimal.Decimal, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, usecase.NewValidationError(name, "must be a number")
	}
	return &d, nil
}
