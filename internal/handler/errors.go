package handler

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// エラーレスポンス。code はクライアントが分岐に使う固定文字列
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	ProductID int64  `json:"productId,omitempty"`
}

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

// usecase のエラーをステータスとcodeに変換して書く
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		middleware.Logger(c, logrus.StandardLogger()).WithError(err).Error("request failed")
	}
	return c.JSON(status, body)
}

func classify(err error) (int, ErrorResponse) {
	var (
		ve  *usecase.ValidationError
		nf  *usecase.NotFoundError
		ise *usecase.InsufficientStockError
		ite *usecase.InvalidTransitionError
		ae  *usecase.AuthorizationError
		ce  *usecase.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Code: CodeValidation, Field: ve.Field}
	case errors.As(err, &nf):
		return http.StatusNotFound, ErrorResponse{Error: nf.Error(), Code: CodeNotFound}
	case errors.As(err, &ise):
		return http.StatusConflict, ErrorResponse{Error: ise.Error(), Code: CodeInsufficientStock, ProductID: ise.ProductID}
	case errors.As(err, &ite):
		return http.StatusConflict, ErrorResponse{Error: ite.Error(), Code: CodeInvalidTransition}
	case errors.As(err, &ae):
		return http.StatusForbidden, ErrorResponse{Error: ae.Error(), Code: CodeForbidden}
	case errors.As(err, &ce):
		return http.StatusConflict, ErrorResponse{Error: ce.Error(), Code: CodeConflict}
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			// 原因はログだけ
			return he.Status, ErrorResponse{Error: "internal error", Code: CodeInternal}
		}
		return he.Status, ErrorResponse{Error: he.Message, Code: codeForStatus(he.Status)}
	}

	//500
	return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: CodeInternal}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		if status >= http.StatusInternalServerError {
			return CodeInternal
		}
		return http.StatusText(status)
	}
}

// echo 自身のエラー（ルート無し・405・Bind失敗）も同じ形で返す
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var ee *echo.HTTPError
	if errors.As(err, &ee) {
		msg := http.StatusText(ee.Code)
		if s, ok := ee.Message.(string); ok && s != "" {
			msg = s
		}
		_ = c.JSON(ee.Code, ErrorResponse{Error: msg, Code: codeForStatus(ee.Code)})
		return
	}
	_ = writeError(c, err)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: CodeValidation})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: CodeUnauthorized})
}

// AuthJWT が入れた user_id
func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

func actorFromContext(c echo.Context) (usecase.Actor, bool) {
	id, ok := getUserIDFromContext(c)
	if !ok {
		return usecase.Actor{}, false
	}
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return usecase.Actor{UserID: id, Role: model.Role(role)}, true
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// 無ければ def
func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bind + validate タグ
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return usecase.NewValidationError("", "invalid body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
