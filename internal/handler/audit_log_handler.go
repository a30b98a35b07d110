package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// GET /admin/audit-logs
type AuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{uc: uc}
}

func (h *AuditLogHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/audit-logs", h.list)
}

func (h *AuditLogHandler) list(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var f repo.AuditLogFilter
	if v := c.QueryParam("actorUserId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid actorUserId")
		}
		f.ActorUserID = &id
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resourceType"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("resourceId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid resourceId")
		}
		f.ResourceID = &id
	}

	var err error
	if f.CreatedFrom, err = parseTimeQuery(c.QueryParam("from")); err != nil {
		return badRequest(c, "invalid from")
	}
	if f.CreatedTo, err = parseTimeQuery(c.QueryParam("to")); err != nil {
		return badRequest(c, "invalid to")
	}

	if f.Limit, ok = queryInt(c, "limit", 50); !ok {
		return badRequest(c, "invalid limit")
	}
	if f.Offset, ok = queryInt(c, "offset", 0); !ok {
		return badRequest(c, "invalid offset")
	}

	logs, err := h.uc.List(c.Request().Context(), actor, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": logs})
}
