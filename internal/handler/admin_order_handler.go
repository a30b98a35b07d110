package handler

import (
	"net/http"
	"strconv"
	"time"

	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// 管理者グループ（/admin）に登録
func (h *AdminOrderHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/orders", h.list)
	admin.PATCH("/orders/:id/status", h.updateStatus)
	admin.PUT("/orders/:id/status", h.updateStatus)
}

// ?status=&userId=&from=&to=（from/to は RFC3339 か YYYY-MM-DD）
func (h *AdminOrderHandler) list(c echo.Context) error {
	actor, ok := actorFromContext(c)
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

	f := repo.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	}
	if v := c.QueryParam("userId"); v != "" {
		uid, err := strconv.ParseInt(v, 10, 64)
		if err != nil || uid <= 0 {
			return badRequest(c, "invalid userId")
		}
		f.UserID = &uid
	}
	var err error
	if f.From, err = parseTimeQuery(c.QueryParam("from")); err != nil {
		return badRequest(c, "invalid from")
	}
	if f.To, err = parseTimeQuery(c.QueryParam("to")); err != nil {
		return badRequest(c, "invalid to")
	}

	out, err := h.uc.List(c.Request().Context(), actor, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req UpdateOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), actor, id, usecase.AdminUpdateOrderStatusInput{Status: req.Status})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func parseTimeQuery(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
