package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		code      string
		field     string
		productID int64
	}{
		{"validation", usecase.NewValidationError("quantity", "must be greater than 0"), http.StatusBadRequest, CodeValidation, "quantity", 0},
		{"not found", &usecase.NotFoundError{Resource: "product", ID: 9}, http.StatusNotFound, CodeNotFound, "", 0},
		{"insufficient stock", &usecase.InsufficientStockError{ProductID: 1, Requested: 46, Available: 45}, http.StatusConflict, CodeInsufficientStock, "", 1},
		{"invalid transition", &usecase.InvalidTransitionError{From: model.OrderStatusDelivered, To: model.OrderStatusCancelled}, http.StatusConflict, CodeInvalidTransition, "", 0},
		{"authorization", &usecase.AuthorizationError{Message: "admin role required"}, http.StatusForbidden, CodeForbidden, "", 0},
		{"conflict", &usecase.ConflictError{Message: "retry"}, http.StatusConflict, CodeConflict, "", 0},
		{"wrapped", fmt.Errorf("place order: %w", &usecase.NotFoundError{Resource: "address", ID: 3}), http.StatusNotFound, CodeNotFound, "", 0},
		{"http 401", usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized"), http.StatusUnauthorized, CodeUnauthorized, "", 0},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.field, body.Field)
			assert.Equal(t, tt.productID, body.ProductID)
		})
	}
}

func TestClassify_InternalCauseIsHidden(t *testing.T) {
	err := &usecase.HTTPError{Status: http.StatusInternalServerError, Message: "db error", Err: errors.New("pq: connection refused")}

	status, body := classify(err)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", body.Error)
	assert.NotContains(t, body.Error, "pq")
}

func TestHTTPErrorHandler_EchoErrors(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeNotFound, body.Code)
}
